package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-timeclock/internal/model"
	"go-timeclock/internal/repository"
	"go-timeclock/internal/sales"
	"go-timeclock/internal/ws"
	"go-timeclock/pkg/validator"
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrUnknownAttribution  = errors.New("attributed user does not exist")
)

type SalesService interface {
	RecordTransaction(req *RecordTransactionRequest, recorderID string) (*model.SalesTransaction, error)
	DeleteTransaction(id uuid.UUID, deleterID string) error
	DailyReport(start, end time.Time) (*sales.Summary, error)
}

type RecordTransactionRequest struct {
	AttributedEmail *string    `json:"attributed_email" validate:"omitempty,email"`
	PaymentMethod   string     `json:"payment_method" validate:"required,oneof=cash card qr other"`
	Amount          int64      `json:"amount" validate:"required,gt=0"`
	OccurredAt      *time.Time `json:"occurred_at"` // defaults to now
	Note            string     `json:"note" validate:"max=500"`
}

type salesService struct {
	txRepo       repository.TransactionRepository
	registerRepo repository.RegisterRepository
	userRepo     repository.UserRepository
	loc          *time.Location
	events       ws.Publisher
	logger       *zap.Logger
	now          func() time.Time
}

func NewSalesService(txRepo repository.TransactionRepository, registerRepo repository.RegisterRepository,
	userRepo repository.UserRepository, loc *time.Location, events ws.Publisher, logger *zap.Logger) SalesService {
	return &salesService{
		txRepo:       txRepo,
		registerRepo: registerRepo,
		userRepo:     userRepo,
		loc:          loc,
		events:       events,
		logger:       logger,
		now:          time.Now,
	}
}

func (s *salesService) RecordTransaction(req *RecordTransactionRequest, recorderID string) (*model.SalesTransaction, error) {
	if err := validator.Check(req); err != nil {
		return nil, err
	}

	// 1. An empty attribution means the shop as a whole
	var attributed *string
	if req.AttributedEmail != nil && *req.AttributedEmail != "" {
		if _, err := s.userRepo.FindByEmail(*req.AttributedEmail); err != nil {
			return nil, ErrUnknownAttribution
		}
		email := *req.AttributedEmail
		attributed = &email
	}

	occurredAt := s.now()
	if req.OccurredAt != nil {
		occurredAt = *req.OccurredAt
	}

	tx := &model.SalesTransaction{
		AttributedEmail: attributed,
		PaymentMethod:   model.PaymentMethod(req.PaymentMethod),
		Amount:          req.Amount,
		OccurredAt:      occurredAt,
		Note:            req.Note,
	}
	tx.Audit(recorderID)

	// 2. Link to the open register session, if any
	session, err := s.registerRepo.FindOpen()
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if session != nil {
		id := session.ID
		tx.RegisterSessionID = &id
	}

	if err := s.txRepo.Create(tx); err != nil {
		return nil, err
	}

	s.events.Publish(ws.Event{
		Type:    "sales_update",
		Action:  "transaction_recorded",
		Message: fmt.Sprintf("%s sale of %d recorded", tx.PaymentMethod, tx.Amount),
		Data:    tx,
	})
	return tx, nil
}

func (s *salesService) DeleteTransaction(id uuid.UUID, deleterID string) error {
	if _, err := s.txRepo.FindByID(id); err != nil {
		return ErrTransactionNotFound
	}
	if err := s.txRepo.Delete(id, deleterID); err != nil {
		return err
	}
	s.logger.Info("transaction deleted", zap.String("id", id.String()), zap.String("by", deleterID))
	s.events.Publish(ws.Event{Type: "sales_update", Action: "transaction_deleted", Data: map[string]string{"id": id.String()}})
	return nil
}

// DailyReport sums [start, end) by payment method and attribution, per day.
func (s *salesService) DailyReport(start, end time.Time) (*sales.Summary, error) {
	if !end.After(start) {
		return nil, ErrInvalidRange
	}
	txs, err := s.txRepo.FindByRange(start, end)
	if err != nil {
		return nil, err
	}
	summary := sales.SumByPaymentCategory(model.ToTransactionRecords(txs), s.loc)
	return &summary, nil
}
