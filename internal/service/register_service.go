package service

import (
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-timeclock/internal/model"
	"go-timeclock/internal/repository"
	"go-timeclock/internal/sales"
	"go-timeclock/internal/ws"
	"go-timeclock/pkg/validator"
)

var (
	ErrRegisterAlreadyOpen = errors.New("register is already open")
	ErrRegisterNotOpen     = errors.New("register is not open")
)

type RegisterService interface {
	Open(req *OpenRegisterRequest, openerEmail string) (*model.RegisterSession, error)
	Close(req *CloseRegisterRequest, closerEmail string) (*model.RegisterSession, error)
	Current() (*model.RegisterSession, error)
}

type OpenRegisterRequest struct {
	OpeningCash int64  `json:"opening_cash" validate:"gte=0"`
	Note        string `json:"note" validate:"max=500"`
}

type CloseRegisterRequest struct {
	CountedCash int64  `json:"counted_cash" validate:"gte=0"`
	Note        string `json:"note" validate:"max=500"`
}

type registerService struct {
	registerRepo repository.RegisterRepository
	txRepo       repository.TransactionRepository
	events       ws.Publisher
	logger       *zap.Logger
	now          func() time.Time
}

func NewRegisterService(registerRepo repository.RegisterRepository, txRepo repository.TransactionRepository,
	events ws.Publisher, logger *zap.Logger) RegisterService {
	return &registerService{
		registerRepo: registerRepo,
		txRepo:       txRepo,
		events:       events,
		logger:       logger,
		now:          time.Now,
	}
}

func (s *registerService) Open(req *OpenRegisterRequest, openerEmail string) (*model.RegisterSession, error) {
	if err := validator.Check(req); err != nil {
		return nil, err
	}

	// 1. One open session at a time
	if _, err := s.Current(); err == nil {
		return nil, ErrRegisterAlreadyOpen
	} else if !errors.Is(err, ErrRegisterNotOpen) {
		return nil, err
	}

	session := &model.RegisterSession{
		OpenedByEmail: openerEmail,
		OpenedAt:      s.now(),
		OpeningCash:   req.OpeningCash,
		Note:          req.Note,
	}
	session.Audit(openerEmail)

	if err := s.registerRepo.Create(session); err != nil {
		return nil, err
	}

	s.logger.Info("register opened", zap.String("by", openerEmail), zap.Int64("opening_cash", req.OpeningCash))
	s.events.Publish(ws.Event{Type: "register_update", Action: "opened", Data: session})
	return session, nil
}

// Close reconciles the drawer: expected cash is the opening float plus the
// cash sales linked to the session when they were recorded.
func (s *registerService) Close(req *CloseRegisterRequest, closerEmail string) (*model.RegisterSession, error) {
	if err := validator.Check(req); err != nil {
		return nil, err
	}

	session, err := s.Current()
	if err != nil {
		return nil, err
	}

	closedAt := s.now()
	txs, err := s.txRepo.FindBySession(session.ID)
	if err != nil {
		return nil, err
	}

	cashSales := sales.CategoryTotal(model.ToTransactionRecords(txs), string(model.PaymentCash))
	expected := session.OpeningCash + cashSales
	counted := req.CountedCash
	difference := counted - expected

	session.ClosedAt = &closedAt
	session.ClosedByEmail = closerEmail
	session.CashSales = cashSales
	session.ExpectedCash = &expected
	session.CountedCash = &counted
	session.Difference = &difference
	if req.Note != "" {
		session.Note = req.Note
	}
	session.UpdatedBy = closerEmail

	if err := s.registerRepo.Update(session); err != nil {
		return nil, err
	}

	if difference != 0 {
		s.logger.Warn("register closed with cash difference",
			zap.String("session_id", session.ID.String()),
			zap.Int64("expected", expected),
			zap.Int64("counted", counted),
		)
	}
	s.events.Publish(ws.Event{Type: "register_update", Action: "closed", Data: session})
	return session, nil
}

func (s *registerService) Current() (*model.RegisterSession, error) {
	session, err := s.registerRepo.FindOpen()
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRegisterNotOpen
		}
		return nil, err
	}
	return session, nil
}
