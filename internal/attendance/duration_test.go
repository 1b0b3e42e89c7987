package attendance

import (
	"errors"
	"math"
	"testing"
	"time"
)

var jst = time.FixedZone("JST", 9*60*60)

func at(day, hour, minute int) time.Time {
	return time.Date(2024, time.March, day, hour, minute, 0, 0, jst)
}

func ptr(t time.Time) *time.Time {
	return &t
}

func TestComputeShiftHours_Scenarios(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		end   *time.Time
		role  Role
		want  float64
	}{
		{"five minutes rounds up to a quarter", at(1, 9, 0), ptr(at(1, 9, 5)), RoleCast, 0.25},
		{"driver evening shift same day", at(1, 18, 0), ptr(at(1, 23, 59)), RoleDriver, 6.0},
		{"driver night shift uses literal elapsed time", at(1, 22, 0), ptr(at(2, 5, 0)), RoleDriver, 7.0},
		{"6h05m", at(1, 9, 0), ptr(at(1, 15, 5)), RoleOwner, 6.25},
		{"6h16m", at(1, 9, 0), ptr(at(1, 15, 16)), RoleOwner, 6.5},
		{"exact six hours", at(1, 9, 0), ptr(at(1, 15, 0)), RoleUnknown, 6.0},
		{"zero elapsed stays zero", at(1, 9, 0), ptr(at(1, 9, 0)), RoleCast, 0},
		{"open shift", at(1, 9, 0), nil, RoleDriver, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeShiftHours(tt.start, tt.end, tt.role)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestComputeShiftHours_EndBeforeStart(t *testing.T) {
	start := at(1, 10, 0)
	end := at(1, 9, 30)

	got, err := ComputeShiftHours(start, &end, RoleCast)
	if got != 0 {
		t.Errorf("expected 0 hours, got %v", got)
	}
	if !errors.Is(err, ErrNegativeDuration) {
		t.Fatalf("expected ErrNegativeDuration, got %v", err)
	}

	var negErr *NegativeDurationError
	if !errors.As(err, &negErr) {
		t.Fatalf("expected *NegativeDurationError, got %T", err)
	}
	if !negErr.Start.Equal(start) || !negErr.End.Equal(end) {
		t.Errorf("error should carry the offending timestamps, got %v", negErr)
	}
}

func TestComputeShiftHours_QuarterCeilingProperty(t *testing.T) {
	start := at(1, 8, 0)
	roles := []Role{RoleUnknown, RoleOwner, RoleCast, RoleDriver}

	for seconds := 0; seconds <= 14*60*60; seconds += 37 {
		elapsed := time.Duration(seconds) * time.Second
		end := start.Add(elapsed)
		trueHours := elapsed.Hours()

		for _, role := range roles {
			got, err := ComputeShiftHours(start, &end, role)
			if err != nil {
				t.Fatalf("unexpected error at %v: %v", elapsed, err)
			}
			if math.Mod(got*4, 1) != 0 {
				t.Fatalf("%v: result %v is not a multiple of 0.25", elapsed, got)
			}
			if got < trueHours {
				t.Fatalf("%v: result %v rounds down from %v", elapsed, got, trueHours)
			}
			if got-trueHours >= 0.25 {
				t.Fatalf("%v: gap %v is not below a quarter hour", elapsed, got-trueHours)
			}
		}
	}
}

func TestComputeShiftHours_OpenShiftIsZeroForAnyRole(t *testing.T) {
	for _, role := range []Role{RoleUnknown, RoleOwner, RoleCast, RoleDriver} {
		got, err := ComputeShiftHours(at(3, 23, 0), nil, role)
		if err != nil || got != 0 {
			t.Errorf("role %s: expected 0/nil, got %v/%v", role, got, err)
		}
	}
}

func TestComputeShiftHours_Deterministic(t *testing.T) {
	start, end := at(1, 22, 7), at(2, 4, 51)
	first, _ := ComputeShiftHours(start, &end, RoleDriver)
	second, _ := ComputeShiftHours(start, &end, RoleDriver)
	if first != second {
		t.Errorf("expected identical results, got %v and %v", first, second)
	}
}

func TestIsNightShift(t *testing.T) {
	tests := []struct {
		name       string
		start, end time.Time
		want       bool
	}{
		{"evening to early morning", at(1, 22, 0), at(2, 5, 0), true},
		{"starts at 18:00 ends 06:30", at(1, 18, 0), at(2, 6, 30), true},
		{"same day evening", at(1, 18, 0), at(1, 23, 59), false},
		{"ends after 06:59", at(1, 22, 0), at(2, 7, 0), false},
		{"starts before 18:00", at(1, 17, 59), at(2, 2, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNightShift(tt.start, tt.end); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestIsNightShift_ReadsEndInStartLocation(t *testing.T) {
	// 22:00 JST to 05:00 JST next day, with the end expressed in UTC (20:00 same UTC day).
	start := at(1, 22, 0)
	end := at(2, 5, 0).UTC()
	if !IsNightShift(start, end) {
		t.Error("expected night shift once end is read in start's location")
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name string
		end  *time.Time
		want string
	}{
		{"open", nil, InProgressLabel},
		{"6h05m", ptr(at(1, 15, 5)), "6時間15分"},
		{"3h06m", ptr(at(1, 12, 6)), "3時間15分"},
		{"exact", ptr(at(1, 17, 0)), "8時間0分"},
		{"2h40m", ptr(at(1, 11, 40)), "2時間45分"},
		{"anomaly", ptr(at(1, 8, 0)), "0時間0分"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatDuration(at(1, 9, 0), tt.end, RoleCast); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestParseRole(t *testing.T) {
	tests := map[string]Role{
		"owner":   RoleOwner,
		"Cast":    RoleCast,
		" driver": RoleDriver,
		"":        RoleUnknown,
		"manager": RoleUnknown,
	}
	for code, want := range tests {
		if got := ParseRole(code); got != want {
			t.Errorf("ParseRole(%q): expected %s, got %s", code, want, got)
		}
	}
}
