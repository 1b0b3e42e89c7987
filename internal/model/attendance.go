package model

import (
	"time"

	"go-timeclock/internal/attendance"
)

// Attendance is one clock-in/clock-out period. ClockOut stays nil while the
// worker is still on shift.
type Attendance struct {
	BaseModel
	UserEmail     string     `gorm:"type:varchar(255);not null;index" json:"user_email" validate:"required,email"`
	User          *User      `gorm:"foreignKey:UserEmail;references:Email" json:"user,omitempty" validate:"-"`
	RoleCode      string     `gorm:"type:varchar(20)" json:"role"` // role at clock-in time
	ClockIn       time.Time  `gorm:"not null;index" json:"clock_in" validate:"required"`
	ClockOut      *time.Time `gorm:"index" json:"clock_out,omitempty"`
	WithCompanion bool       `gorm:"default:false" json:"with_companion"`
	PhotoURL      string     `gorm:"type:text" json:"photo_url,omitempty"`
	Note          string     `gorm:"type:text" json:"note,omitempty"`
}

func (Attendance) TableName() string {
	return "attendances"
}

// IsOpen reports whether the worker has not clocked out yet.
func (a *Attendance) IsOpen() bool {
	return a.ClockOut == nil
}

// ToShiftRecord snapshots the row for the hours engine.
func (a *Attendance) ToShiftRecord() attendance.ShiftRecord {
	rec := attendance.ShiftRecord{
		ID:             a.ID.String(),
		UserIdentifier: a.UserEmail,
		Role:           attendance.ParseRole(a.RoleCode),
		StartTime:      a.ClockIn,
		Companion:      a.WithCompanion,
	}
	if a.ClockOut != nil {
		end := *a.ClockOut
		rec.EndTime = &end
	}
	return rec
}

// AttendanceResponse is an attendance row with its computed hours.
type AttendanceResponse struct {
	ID            string     `json:"id"`
	UserEmail     string     `json:"user_email"`
	UserName      string     `json:"user_name,omitempty"`
	Role          string     `json:"role"`
	ClockIn       time.Time  `json:"clock_in"`
	ClockOut      *time.Time `json:"clock_out,omitempty"`
	WithCompanion bool       `json:"with_companion"`
	PhotoURL      string     `json:"photo_url,omitempty"`
	Note          string     `json:"note,omitempty"`
	Hours         float64    `json:"hours"`
	HoursLabel    string     `json:"hours_label"`
	NightShift    bool       `json:"night_shift"`
	Anomaly       bool       `json:"anomaly"`
}

// ToResponse merges the row with its evaluation from the hours engine.
func (a *Attendance) ToResponse(eval attendance.ShiftHours) AttendanceResponse {
	resp := AttendanceResponse{
		ID:            a.ID.String(),
		UserEmail:     a.UserEmail,
		Role:          eval.Role.String(),
		ClockIn:       a.ClockIn,
		ClockOut:      a.ClockOut,
		WithCompanion: a.WithCompanion,
		PhotoURL:      a.PhotoURL,
		Note:          a.Note,
		Hours:         eval.Hours,
		HoursLabel:    eval.Label,
		NightShift:    eval.NightShift,
		Anomaly:       eval.Anomaly,
	}
	if a.User != nil {
		resp.UserName = a.User.Name()
	}
	return resp
}

// ViewType selects the reporting window around a reference date.
type ViewType string

const (
	ViewTypeDaily   ViewType = "daily"
	ViewTypeWeekly  ViewType = "weekly"
	ViewTypeMonthly ViewType = "monthly"
)
