package service

import (
	"time"

	"go-timeclock/internal/attendance"
	"go-timeclock/internal/model"
	"go-timeclock/internal/repository"
	"go-timeclock/pkg/namecache"
)

// roleLookup resolves the current role of every user appearing in rows.
// Users that cannot be found keep the role recorded on the row.
func roleLookup(userRepo repository.UserRepository, rows []model.Attendance) (attendance.RoleLookup, error) {
	users, err := userRepo.FindByEmails(distinctEmails(rows))
	if err != nil {
		return nil, err
	}
	roles := make(attendance.RoleLookup, len(users))
	for i := range users {
		if role := users[i].AttendanceRole(); role != attendance.RoleUnknown {
			roles[users[i].Email] = role
		}
	}
	return roles, nil
}

func distinctEmails(rows []model.Attendance) []string {
	seen := make(map[string]bool, len(rows))
	var emails []string
	for _, row := range rows {
		if !seen[row.UserEmail] {
			seen[row.UserEmail] = true
			emails = append(emails, row.UserEmail)
		}
	}
	return emails
}

func toShiftRecords(rows []model.Attendance) []attendance.ShiftRecord {
	records := make([]attendance.ShiftRecord, len(rows))
	for i := range rows {
		records[i] = rows[i].ToShiftRecord()
	}
	return records
}

// NewNameLoader loads display names from the user table for the name cache.
func NewNameLoader(userRepo repository.UserRepository) namecache.Loader {
	return namecache.LoaderFunc(func(emails []string) (map[string]string, error) {
		users, err := userRepo.FindByEmails(emails)
		if err != nil {
			return nil, err
		}
		names := make(map[string]string, len(users))
		for i := range users {
			names[users[i].Email] = users[i].Name()
		}
		return names, nil
	})
}

// calculateDateRange returns the half-open window [start, end) of the view
// around referenceDate.
func calculateDateRange(viewType string, referenceDate time.Time, loc *time.Location) (time.Time, time.Time) {
	ref := referenceDate.In(loc)
	day := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, loc)

	switch model.ViewType(viewType) {
	case model.ViewTypeDaily:
		return day, day.AddDate(0, 0, 1)

	case model.ViewTypeWeekly:
		// weeks start on Monday
		weekday := int(ref.Weekday())
		if weekday == 0 {
			weekday = 7
		}
		start := day.AddDate(0, 0, -(weekday - 1))
		return start, start.AddDate(0, 0, 7)

	default:
		start := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, loc)
		return start, start.AddDate(0, 1, 0)
	}
}
