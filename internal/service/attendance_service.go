package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-timeclock/internal/attendance"
	"go-timeclock/internal/model"
	"go-timeclock/internal/repository"
	"go-timeclock/internal/ws"
	"go-timeclock/pkg/validator"
)

const monthLayout = "2006-01"

var (
	ErrAttendanceNotFound     = errors.New("attendance not found")
	ErrAlreadyClockedIn       = errors.New("already clocked in, clock out first")
	ErrNotClockedIn           = errors.New("no open shift to clock out of")
	ErrClockOutBeforeClockIn  = errors.New("clock out cannot be before clock in")
	ErrInvalidMonthFormat     = errors.New("invalid month format, use YYYY-MM")
	ErrInvalidRange           = errors.New("end must be after start")
	ErrUnauthorizedAttendance = errors.New("you can only view your own attendance")
	ErrInactiveClockIn        = errors.New("inactive users cannot clock in")
)

type AttendanceService interface {
	ClockIn(email string, req *ClockInRequest) (*model.AttendanceResponse, error)
	ClockOut(email string, req *ClockOutRequest) (*model.AttendanceResponse, error)
	UpdateAttendance(id uuid.UUID, req *UpdateAttendanceRequest, updaterID string) (*model.AttendanceResponse, error)
	DeleteAttendance(id uuid.UUID, deleterID string) error
	GetAttendance(id uuid.UUID, requesterEmail string, canViewAll bool) (*model.AttendanceResponse, error)
	ListAttendances(requesterEmail string, canViewAll bool, viewType string, referenceDate time.Time) ([]model.AttendanceResponse, error)
	GetCalendar(month string, email string) (*CalendarResponse, error)
	GetSummary(start, end time.Time) (*AttendanceSummary, error)
}

type ClockInRequest struct {
	WithCompanion bool   `json:"with_companion"`
	PhotoURL      string `json:"photo_url" validate:"omitempty,url"`
	Note          string `json:"note" validate:"max=500"`
}

type ClockOutRequest struct {
	Note string `json:"note" validate:"max=500"`
}

// UpdateAttendanceRequest is an admin correction; nil fields are left alone.
type UpdateAttendanceRequest struct {
	ClockIn       *time.Time `json:"clock_in"`
	ClockOut      *time.Time `json:"clock_out"`
	ReopenShift   bool       `json:"reopen_shift"` // clears clock_out
	WithCompanion *bool      `json:"with_companion"`
	Note          *string    `json:"note" validate:"omitempty,max=500"`
}

// CalendarDay is one cell of the month grid. Days without shifts are kept
// with an empty Shifts slice.
type CalendarDay struct {
	Date       string                     `json:"date"`
	Weekday    string                     `json:"weekday"`
	Shifts     []model.AttendanceResponse `json:"shifts"`
	TotalHours float64                    `json:"total_hours"`
	Label      string                     `json:"label"`
}

type CalendarResponse struct {
	Month      string        `json:"month"`
	UserEmail  string        `json:"user_email,omitempty"`
	Days       []CalendarDay `json:"days"`
	TotalHours float64       `json:"total_hours"`
	Label      string        `json:"label"`
}

type AttendanceSummary struct {
	Start  time.Time                    `json:"start"`
	End    time.Time                    `json:"end"`
	Users  []attendance.AggregateResult `json:"users"`
	Totals attendance.Totals            `json:"totals"`
}

type attendanceService struct {
	attendanceRepo repository.AttendanceRepository
	userRepo       repository.UserRepository
	engine         *attendance.Engine
	events         ws.Publisher
	logger         *zap.Logger
	now            func() time.Time
}

func NewAttendanceService(attendanceRepo repository.AttendanceRepository, userRepo repository.UserRepository,
	engine *attendance.Engine, events ws.Publisher, logger *zap.Logger) AttendanceService {
	return &attendanceService{
		attendanceRepo: attendanceRepo,
		userRepo:       userRepo,
		engine:         engine,
		events:         events,
		logger:         logger,
		now:            time.Now,
	}
}

func (s *attendanceService) ClockIn(email string, req *ClockInRequest) (*model.AttendanceResponse, error) {
	if err := validator.Check(req); err != nil {
		return nil, err
	}

	// 1. The worker must exist and be active
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		return nil, ErrUserNotFound
	}
	if !user.IsActive {
		return nil, ErrInactiveClockIn
	}

	// 2. One open shift per worker
	open, err := s.attendanceRepo.FindOpenByUser(email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if open != nil {
		return nil, ErrAlreadyClockedIn
	}

	// 3. Record the role at clock-in time
	row := &model.Attendance{
		UserEmail:     email,
		User:          user,
		RoleCode:      user.RoleCode(),
		ClockIn:       s.now(),
		WithCompanion: req.WithCompanion,
		PhotoURL:      req.PhotoURL,
		Note:          req.Note,
	}
	row.Audit(user.ID.String())

	if err := s.attendanceRepo.Create(row); err != nil {
		// a concurrent clock-in won the open-shift index
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyClockedIn
		}
		return nil, err
	}

	s.logger.Info("clock in", zap.String("email", email), zap.String("role", row.RoleCode))

	resp := s.respond(row, nil)
	s.notify("clock_in", fmt.Sprintf("%s clocked in", user.Name()), resp)
	return &resp, nil
}

func (s *attendanceService) ClockOut(email string, req *ClockOutRequest) (*model.AttendanceResponse, error) {
	if err := validator.Check(req); err != nil {
		return nil, err
	}

	row, err := s.attendanceRepo.FindOpenByUser(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotClockedIn
		}
		return nil, err
	}

	now := s.now()
	if now.Before(row.ClockIn) {
		return nil, ErrClockOutBeforeClockIn
	}

	row.ClockOut = &now
	if req.Note != "" {
		row.Note = req.Note
	}
	row.UpdatedBy = email

	if err := s.attendanceRepo.Update(row); err != nil {
		return nil, err
	}

	resp := s.respond(row, nil)
	s.logger.Info("clock out", zap.String("email", email), zap.Float64("hours", resp.Hours))
	s.notify("clock_out", fmt.Sprintf("%s clocked out after %s", email, resp.HoursLabel), resp)
	return &resp, nil
}

func (s *attendanceService) UpdateAttendance(id uuid.UUID, req *UpdateAttendanceRequest, updaterID string) (*model.AttendanceResponse, error) {
	if err := validator.Check(req); err != nil {
		return nil, err
	}

	row, err := s.attendanceRepo.FindByID(id)
	if err != nil {
		return nil, ErrAttendanceNotFound
	}

	if req.ClockIn != nil {
		row.ClockIn = *req.ClockIn
	}
	if req.ReopenShift {
		row.ClockOut = nil
	} else if req.ClockOut != nil {
		out := *req.ClockOut
		row.ClockOut = &out
	}
	if req.WithCompanion != nil {
		row.WithCompanion = *req.WithCompanion
	}
	if req.Note != nil {
		row.Note = *req.Note
	}

	if row.ClockOut != nil && row.ClockOut.Before(row.ClockIn) {
		return nil, ErrClockOutBeforeClockIn
	}

	row.UpdatedBy = updaterID
	if err := s.attendanceRepo.Update(row); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyClockedIn
		}
		return nil, err
	}

	resp := s.respond(row, nil)
	s.notify("updated", "attendance corrected", resp)
	return &resp, nil
}

func (s *attendanceService) DeleteAttendance(id uuid.UUID, deleterID string) error {
	row, err := s.attendanceRepo.FindByID(id)
	if err != nil {
		return ErrAttendanceNotFound
	}
	if err := s.attendanceRepo.Delete(id, deleterID); err != nil {
		return err
	}
	s.notify("deleted", "attendance deleted", map[string]string{"id": row.ID.String(), "user_email": row.UserEmail})
	return nil
}

func (s *attendanceService) GetAttendance(id uuid.UUID, requesterEmail string, canViewAll bool) (*model.AttendanceResponse, error) {
	row, err := s.attendanceRepo.FindByID(id)
	if err != nil {
		return nil, ErrAttendanceNotFound
	}
	if !canViewAll && row.UserEmail != requesterEmail {
		return nil, ErrUnauthorizedAttendance
	}

	roles, err := roleLookup(s.userRepo, []model.Attendance{*row})
	if err != nil {
		return nil, err
	}
	resp := s.respond(row, roles)
	return &resp, nil
}

func (s *attendanceService) ListAttendances(requesterEmail string, canViewAll bool, viewType string, referenceDate time.Time) ([]model.AttendanceResponse, error) {
	start, end := calculateDateRange(viewType, referenceDate, s.engine.Location())

	var (
		rows []model.Attendance
		err  error
	)
	if canViewAll {
		rows, err = s.attendanceRepo.FindByRange(start, end)
	} else {
		rows, err = s.attendanceRepo.FindByUserAndRange(requesterEmail, start, end)
	}
	if err != nil {
		return nil, err
	}

	roles, err := roleLookup(s.userRepo, rows)
	if err != nil {
		return nil, err
	}

	responses := make([]model.AttendanceResponse, len(rows))
	for i := range rows {
		responses[i] = s.respond(&rows[i], roles)
	}
	return responses, nil
}

// GetCalendar builds the full month grid for one worker, or for everyone
// when email is empty.
func (s *attendanceService) GetCalendar(month string, email string) (*CalendarResponse, error) {
	loc := s.engine.Location()
	first, err := time.ParseInLocation(monthLayout, month, loc)
	if err != nil {
		return nil, ErrInvalidMonthFormat
	}
	next := first.AddDate(0, 1, 0)

	var rows []model.Attendance
	if email != "" {
		rows, err = s.attendanceRepo.FindByUserAndRange(email, first, next)
	} else {
		rows, err = s.attendanceRepo.FindByRange(first, next)
	}
	if err != nil {
		return nil, err
	}

	roles, err := roleLookup(s.userRepo, rows)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*model.Attendance, len(rows))
	for i := range rows {
		byID[rows[i].ID.String()] = &rows[i]
	}
	byDate := s.engine.GroupByCalendarDate(toShiftRecords(rows))

	cal := &CalendarResponse{Month: month, UserEmail: email}
	for day := first; day.Before(next); day = day.AddDate(0, 0, 1) {
		key := day.Format(attendance.DateLayout)
		cell := CalendarDay{
			Date:    key,
			Weekday: day.Weekday().String(),
			Shifts:  []model.AttendanceResponse{},
		}
		for _, rec := range byDate[key] {
			resp := s.respond(byID[rec.ID], roles)
			cell.Shifts = append(cell.Shifts, resp)
			cell.TotalHours += resp.Hours
		}
		cell.Label = attendance.FormatHours(cell.TotalHours)
		cal.TotalHours += cell.TotalHours
		cal.Days = append(cal.Days, cell)
	}
	cal.Label = attendance.FormatHours(cal.TotalHours)
	return cal, nil
}

func (s *attendanceService) GetSummary(start, end time.Time) (*AttendanceSummary, error) {
	if !end.After(start) {
		return nil, ErrInvalidRange
	}

	rows, err := s.attendanceRepo.FindByRange(start, end)
	if err != nil {
		return nil, err
	}
	roles, err := roleLookup(s.userRepo, rows)
	if err != nil {
		return nil, err
	}

	results, err := s.engine.AggregateByUser(toShiftRecords(rows), roles)
	if err != nil {
		return nil, err
	}
	return &AttendanceSummary{
		Start:  start,
		End:    end,
		Users:  results,
		Totals: attendance.GrandTotal(results),
	}, nil
}

func (s *attendanceService) respond(row *model.Attendance, roles attendance.RoleLookup) model.AttendanceResponse {
	return row.ToResponse(s.engine.Evaluate(row.ToShiftRecord(), roles))
}

func (s *attendanceService) notify(action, message string, data interface{}) {
	s.events.Publish(ws.Event{
		Type:    "attendance_update",
		Action:  action,
		Message: message,
		Data:    data,
	})
}
