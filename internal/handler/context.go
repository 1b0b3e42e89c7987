package handler

import (
	"slices"
	"time"

	"github.com/gofiber/fiber/v2"

	"go-timeclock/internal/attendance"
	"go-timeclock/internal/middleware"
)

// actorID is the authenticated user id, or "system" outside RequireAuth.
func actorID(c *fiber.Ctx) string {
	if id, ok := c.Locals(middleware.LocalUserID).(string); ok && id != "" {
		return id
	}
	return "system"
}

func actorEmail(c *fiber.Ctx) string {
	email, _ := c.Locals(middleware.LocalUserEmail).(string)
	return email
}

func hasPrivilege(c *fiber.Ctx, code string) bool {
	privileges, _ := c.Locals(middleware.LocalUserPrivileges).([]string)
	return slices.Contains(privileges, code)
}

// parseDateRange reads ?start=YYYY-MM-DD&end=YYYY-MM-DD as whole days in loc
// and returns the half-open window [start, end+1day). Missing values default
// to the current month.
func parseDateRange(c *fiber.Ctx, loc *time.Location, now time.Time) (time.Time, time.Time, error) {
	today := now.In(loc)
	start := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, loc)
	end := start.AddDate(0, 1, 0)

	if s := c.Query("start"); s != "" {
		parsed, err := time.ParseInLocation(attendance.DateLayout, s, loc)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		start = parsed
	}
	if e := c.Query("end"); e != "" {
		parsed, err := time.ParseInLocation(attendance.DateLayout, e, loc)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		end = parsed.AddDate(0, 0, 1)
	}
	return start, end, nil
}
