package attendance

import (
	"errors"
	"fmt"
	"math"
	"time"
)

const (
	// InProgressLabel is shown instead of a duration while a shift is open.
	InProgressLabel = "勤務中"

	quarterHour = 15 * time.Minute

	nightShiftStartHour = 18
	nightShiftEndHour   = 6
)

var (
	ErrNegativeDuration = errors.New("clock-out precedes clock-in")
	ErrMissingStartTime = errors.New("shift record has no start time")
)

// NegativeDurationError carries the offending timestamps of a shift whose
// clock-out is earlier than its clock-in.
type NegativeDurationError struct {
	Start time.Time
	End   time.Time
}

func (e *NegativeDurationError) Error() string {
	return fmt.Sprintf("%s: start=%s end=%s", ErrNegativeDuration,
		e.Start.Format(time.RFC3339), e.End.Format(time.RFC3339))
}

func (e *NegativeDurationError) Unwrap() error {
	return ErrNegativeDuration
}

// ComputeShiftHours returns the billable hours of one shift, rounded up to
// the next quarter hour.
//
// An open shift (nil end) yields 0 with no error. A shift whose end precedes
// its start yields 0 and a *NegativeDurationError; callers report it and
// carry on. Driver night shifts (see IsNightShift) are billed on the literal
// elapsed time like every other shift; they are not anchored to midnight.
func ComputeShiftHours(start time.Time, end *time.Time, role Role) (float64, error) {
	if end == nil {
		return 0, nil
	}

	elapsed := end.Sub(start)
	if elapsed < 0 {
		return 0, &NegativeDurationError{Start: start, End: *end}
	}

	return roundUpToQuarter(elapsed), nil
}

// IsNightShift reports whether a shift starts at or after 18:00, ends at or
// before 06:59 and crosses midnight. Both instants are read in start's
// location.
func IsNightShift(start, end time.Time) bool {
	end = end.In(start.Location())
	if start.Hour() < nightShiftStartHour || end.Hour() > nightShiftEndHour {
		return false
	}
	sy, sm, sd := start.Date()
	ey, em, ed := end.Date()
	return sy != ey || sm != em || sd != ed
}

// FormatDuration renders the rounded hours of a shift as "H時間M分", or
// InProgressLabel when the shift is still open.
//
// It is display-only: a shift ending before it starts renders "0時間0分"
// and nothing is reported. Code that must surface the anomaly goes through
// Engine.Evaluate, which hands it to the AnomalyReporter.
func FormatDuration(start time.Time, end *time.Time, role Role) string {
	if end == nil {
		return InProgressLabel
	}
	hours, _ := ComputeShiftHours(start, end, role)
	return FormatHours(hours)
}

// FormatHours renders fractional hours as "H時間M分".
func FormatHours(total float64) string {
	whole := math.Floor(total)
	minutes := int(math.Round((total - whole) * 60))
	return fmt.Sprintf("%d時間%d分", int(whole), minutes)
}

func roundUpToQuarter(d time.Duration) float64 {
	quarters := d / quarterHour
	if d%quarterHour != 0 {
		quarters++
	}
	return float64(quarters) / 4
}
