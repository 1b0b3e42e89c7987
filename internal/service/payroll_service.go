package service

import (
	"time"

	"go.uber.org/zap"

	"go-timeclock/internal/attendance"
	"go-timeclock/internal/repository"
	"go-timeclock/pkg/namecache"
)

// PayrollLine is one worker's row in the payroll summary. Rates are not
// configured yet, so HourlyRate and Pay are always zero.
type PayrollLine struct {
	UserEmail           string  `json:"user_email"`
	Name                string  `json:"name"`
	Role                string  `json:"role"`
	TotalHours          float64 `json:"total_hours"`
	HoursLabel          string  `json:"hours_label"`
	ShiftCount          int     `json:"shift_count"`
	CompanionShiftCount int     `json:"companion_shift_count"`
	OpenShiftCount      int     `json:"open_shift_count"`
	HourlyRate          int64   `json:"hourly_rate"`
	Pay                 int64   `json:"pay"`
}

type PayrollSummary struct {
	Start       time.Time         `json:"start"`
	End         time.Time         `json:"end"`
	Lines       []PayrollLine     `json:"lines"`
	Totals      attendance.Totals `json:"totals"`
	TotalsLabel string            `json:"totals_label"`
	TotalPay    int64             `json:"total_pay"`
}

type PayrollService interface {
	Summary(start, end time.Time) (*PayrollSummary, error)
	// MonthSummary covers the calendar month "YYYY-MM" in the reporting timezone.
	MonthSummary(month string) (*PayrollSummary, error)
}

type payrollService struct {
	attendanceRepo repository.AttendanceRepository
	userRepo       repository.UserRepository
	engine         *attendance.Engine
	names          *namecache.Cache
	logger         *zap.Logger
}

func NewPayrollService(attendanceRepo repository.AttendanceRepository, userRepo repository.UserRepository,
	engine *attendance.Engine, names *namecache.Cache, logger *zap.Logger) PayrollService {
	return &payrollService{
		attendanceRepo: attendanceRepo,
		userRepo:       userRepo,
		engine:         engine,
		names:          names,
		logger:         logger,
	}
}

func (s *payrollService) MonthSummary(month string) (*PayrollSummary, error) {
	first, err := time.ParseInLocation(monthLayout, month, s.engine.Location())
	if err != nil {
		return nil, ErrInvalidMonthFormat
	}
	return s.Summary(first, first.AddDate(0, 1, 0))
}

func (s *payrollService) Summary(start, end time.Time) (*PayrollSummary, error) {
	if !end.After(start) {
		return nil, ErrInvalidRange
	}

	// 1. Load the window and the current roles
	rows, err := s.attendanceRepo.FindByRange(start, end)
	if err != nil {
		return nil, err
	}
	roles, err := roleLookup(s.userRepo, rows)
	if err != nil {
		return nil, err
	}

	// 2. Aggregate hours per worker
	results, err := s.engine.AggregateByUser(toShiftRecords(rows), roles)
	if err != nil {
		return nil, err
	}

	// 3. Resolve display names; a failed lookup still yields a report
	emails := make([]string, len(results))
	for i, r := range results {
		emails[i] = r.UserIdentifier
	}
	names, err := s.names.Resolve(emails)
	if err != nil {
		s.logger.Warn("display name lookup failed, using emails", zap.Error(err))
	}

	recorded := make(map[string]string, len(rows))
	for _, row := range rows {
		recorded[row.UserEmail] = row.RoleCode
	}

	summary := &PayrollSummary{
		Start:  start,
		End:    end,
		Lines:  make([]PayrollLine, 0, len(results)),
		Totals: attendance.GrandTotal(results),
	}
	for _, r := range results {
		role, ok := roles[r.UserIdentifier]
		if !ok {
			role = attendance.ParseRole(recorded[r.UserIdentifier])
		}
		line := PayrollLine{
			UserEmail:           r.UserIdentifier,
			Name:                names[r.UserIdentifier],
			Role:                role.String(),
			TotalHours:          r.TotalHours,
			HoursLabel:          attendance.FormatHours(r.TotalHours),
			ShiftCount:          r.ShiftCount,
			CompanionShiftCount: r.CompanionShiftCount,
			OpenShiftCount:      r.OpenShiftCount,
		}
		summary.TotalPay += line.Pay
		summary.Lines = append(summary.Lines, line)
	}
	summary.TotalsLabel = attendance.FormatHours(summary.Totals.Hours)
	return summary, nil
}
