package attendance

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"

	"go-timeclock/internal/rollup"
)

// DateLayout is the calendar date key used by the date-grouped views.
const DateLayout = "2006-01-02"

// ShiftRecord is an immutable snapshot of one attendance period.
type ShiftRecord struct {
	ID             string
	UserIdentifier string
	Role           Role
	StartTime      time.Time
	EndTime        *time.Time // nil while the shift is open
	Companion      bool
}

// AggregateResult holds one user's totals over a reporting window.
type AggregateResult struct {
	UserIdentifier      string  `json:"user_identifier"`
	TotalHours          float64 `json:"total_hours"`
	ShiftCount          int     `json:"shift_count"`
	CompanionShiftCount int     `json:"companion_shift_count"`
	OpenShiftCount      int     `json:"open_shift_count"`
}

// Totals is the grand total over every user of a window.
type Totals struct {
	Hours               float64 `json:"hours"`
	UserCount           int     `json:"user_count"`
	ShiftCount          int     `json:"shift_count"`
	CompanionShiftCount int     `json:"companion_shift_count"`
	OpenShiftCount      int     `json:"open_shift_count"`
}

// ShiftHours is the per-record evaluation shown in calendar views.
type ShiftHours struct {
	Record     ShiftRecord
	Role       Role
	Hours      float64
	Label      string
	NightShift bool
	Anomaly    bool
}

// AnomalyReporter receives records whose computed duration was discarded.
type AnomalyReporter interface {
	ReportNegativeDuration(rec ShiftRecord, err *NegativeDurationError)
}

type logReporter struct {
	logger *zap.Logger
}

// NewLogReporter reports anomalies as zap warnings.
func NewLogReporter(logger *zap.Logger) AnomalyReporter {
	return &logReporter{logger: logger}
}

func (r *logReporter) ReportNegativeDuration(rec ShiftRecord, err *NegativeDurationError) {
	r.logger.Warn("negative shift duration, counted as zero",
		zap.String("shift_id", rec.ID),
		zap.String("user", rec.UserIdentifier),
		zap.Time("start", err.Start),
		zap.Time("end", err.End),
	)
}

// Engine folds shift snapshots into per-user and per-date views. It holds no
// mutable state and is safe for concurrent use.
type Engine struct {
	loc      *time.Location
	reporter AnomalyReporter
}

func NewEngine(loc *time.Location, reporter AnomalyReporter) *Engine {
	if loc == nil {
		loc = time.UTC
	}
	if reporter == nil {
		reporter = NewLogReporter(zap.NewNop())
	}
	return &Engine{loc: loc, reporter: reporter}
}

// Location is the reporting timezone of the engine.
func (e *Engine) Location() *time.Location {
	return e.loc
}

// DateKey returns the calendar date of t in the reporting timezone.
func (e *Engine) DateKey(t time.Time) string {
	return t.In(e.loc).Format(DateLayout)
}

// Evaluate computes the hours of one record, reporting a negative duration
// instead of returning it.
func (e *Engine) Evaluate(rec ShiftRecord, roles RoleLookup) ShiftHours {
	role := roles.resolve(rec)
	start := rec.StartTime.In(e.loc)

	var end *time.Time
	if rec.EndTime != nil {
		t := rec.EndTime.In(e.loc)
		end = &t
	}

	out := ShiftHours{Record: rec, Role: role, Label: InProgressLabel}
	if end == nil {
		return out
	}

	hours, err := ComputeShiftHours(start, end, role)
	var negErr *NegativeDurationError
	if errors.As(err, &negErr) {
		e.reporter.ReportNegativeDuration(rec, negErr)
		out.Anomaly = true
	}

	out.Hours = hours
	out.Label = FormatHours(hours)
	out.NightShift = role == RoleDriver && IsNightShift(start, *end)
	return out
}

// AggregateByUser sums rounded hours per user identifier. Only users with at
// least one record appear; results are ordered by identifier.
func (e *Engine) AggregateByUser(records []ShiftRecord, roles RoleLookup) ([]AggregateResult, error) {
	if err := checkRecords(records); err != nil {
		return nil, err
	}

	byUser := rollup.Fold(records, userKey, func(acc AggregateResult, rec ShiftRecord) AggregateResult {
		acc.UserIdentifier = rec.UserIdentifier
		acc.TotalHours += e.Evaluate(rec, roles).Hours
		if rec.EndTime != nil {
			acc.ShiftCount++
		} else {
			acc.OpenShiftCount++
		}
		if rec.Companion {
			acc.CompanionShiftCount++
		}
		return acc
	})

	results := make([]AggregateResult, 0, len(byUser))
	for _, id := range rollup.SortedKeys(byUser) {
		results = append(results, byUser[id])
	}
	return results, nil
}

// GroupByCalendarDate buckets records in the engine's reporting timezone.
func (e *Engine) GroupByCalendarDate(records []ShiftRecord) map[string][]ShiftRecord {
	return GroupByCalendarDate(records, e.loc)
}

// GroupByCalendarDate buckets records by the calendar date of their start
// time in loc, so a shift crossing midnight belongs to the day it started.
// Each bucket is ordered by start time; dates without records are absent.
func GroupByCalendarDate(records []ShiftRecord, loc *time.Location) map[string][]ShiftRecord {
	groups := rollup.GroupBy(records, func(rec ShiftRecord) string {
		return rec.StartTime.In(loc).Format(DateLayout)
	})
	for _, bucket := range groups {
		SortByStart(bucket)
	}
	return groups
}

// SortByStart orders records by start time, then ID.
func SortByStart(records []ShiftRecord) {
	slices.SortStableFunc(records, func(a, b ShiftRecord) int {
		if c := a.StartTime.Compare(b.StartTime); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

// GrandTotal sums per-user results.
func GrandTotal(results []AggregateResult) Totals {
	var t Totals
	for _, r := range results {
		t.Hours += r.TotalHours
		t.ShiftCount += r.ShiftCount
		t.CompanionShiftCount += r.CompanionShiftCount
		t.OpenShiftCount += r.OpenShiftCount
	}
	t.UserCount = len(results)
	return t
}

func userKey(rec ShiftRecord) string {
	return rec.UserIdentifier
}

func checkRecords(records []ShiftRecord) error {
	for _, rec := range records {
		if rec.StartTime.IsZero() {
			return fmt.Errorf("%w: shift %q", ErrMissingStartTime, rec.ID)
		}
	}
	return nil
}
