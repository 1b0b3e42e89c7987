package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"go-timeclock/internal/attendance"
	"go-timeclock/internal/model"
	"go-timeclock/internal/service"
	"go-timeclock/pkg/validator"
)

type AttendanceHandler struct {
	attendanceService service.AttendanceService
	loc               *time.Location
}

func NewAttendanceHandler(attendanceService service.AttendanceService, loc *time.Location) *AttendanceHandler {
	return &AttendanceHandler{attendanceService: attendanceService, loc: loc}
}

// ClockIn opens a shift for the caller
// POST /api/v1/attendance/clock-in
func (h *AttendanceHandler) ClockIn(c *fiber.Ctx) error {
	var req service.ClockInRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	resp, err := h.attendanceService.ClockIn(actorEmail(c), &req)
	if err != nil {
		return c.Status(attendanceStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(201).JSON(fiber.Map{
		"message": "Clocked in",
		"data":    resp,
	})
}

// ClockOut closes the caller's open shift
// POST /api/v1/attendance/clock-out
func (h *AttendanceHandler) ClockOut(c *fiber.Ctx) error {
	var req service.ClockOutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	resp, err := h.attendanceService.ClockOut(actorEmail(c), &req)
	if err != nil {
		return c.Status(attendanceStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"message": "Clocked out",
		"data":    resp,
	})
}

// UpdateAttendance corrects a record
// PUT /api/v1/attendance/:id
func (h *AttendanceHandler) UpdateAttendance(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid attendance ID"})
	}

	var req service.UpdateAttendanceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	resp, err := h.attendanceService.UpdateAttendance(id, &req, actorID(c))
	if err != nil {
		return c.Status(attendanceStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"message": "Attendance updated successfully",
		"data":    resp,
	})
}

// DeleteAttendance
// DELETE /api/v1/attendance/:id
func (h *AttendanceHandler) DeleteAttendance(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid attendance ID"})
	}

	if err := h.attendanceService.DeleteAttendance(id, actorID(c)); err != nil {
		return c.Status(attendanceStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"message": "Attendance deleted successfully"})
}

// GetAttendance
// GET /api/v1/attendance/:id
func (h *AttendanceHandler) GetAttendance(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid attendance ID"})
	}

	resp, err := h.attendanceService.GetAttendance(id, actorEmail(c), hasPrivilege(c, model.PrivAttendanceViewAll))
	if err != nil {
		return c.Status(attendanceStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"data": resp})
}

// ListAttendances
// GET /api/v1/attendance?view_type=daily|weekly|monthly&reference_date=YYYY-MM-DD
// Users without attendance:view_all only see their own records.
func (h *AttendanceHandler) ListAttendances(c *fiber.Ctx) error {
	viewType := c.Query("view_type", string(model.ViewTypeMonthly))

	referenceDate := time.Now()
	if s := c.Query("reference_date"); s != "" {
		parsed, err := time.ParseInLocation(attendance.DateLayout, s, h.loc)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid reference_date format, use YYYY-MM-DD"})
		}
		referenceDate = parsed
	}

	canViewAll := hasPrivilege(c, model.PrivAttendanceViewAll)
	rows, err := h.attendanceService.ListAttendances(actorEmail(c), canViewAll, viewType, referenceDate)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"data":           rows,
		"view_type":      viewType,
		"reference_date": referenceDate.In(h.loc).Format(attendance.DateLayout),
		"total":          len(rows),
	})
}

// GetCalendar returns the month grid
// GET /api/v1/attendance/calendar?month=YYYY-MM&email=...
// Without attendance:view_all the email is forced to the caller.
func (h *AttendanceHandler) GetCalendar(c *fiber.Ctx) error {
	month := c.Query("month", time.Now().In(h.loc).Format("2006-01"))

	email := c.Query("email")
	if !hasPrivilege(c, model.PrivAttendanceViewAll) {
		email = actorEmail(c)
	}

	cal, err := h.attendanceService.GetCalendar(month, email)
	if err != nil {
		return c.Status(attendanceStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"data": cal})
}

// GetSummary aggregates hours per user
// GET /api/v1/attendance/summary?start=YYYY-MM-DD&end=YYYY-MM-DD
func (h *AttendanceHandler) GetSummary(c *fiber.Ctx) error {
	start, end, err := parseDateRange(c, h.loc, time.Now())
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid date format, use YYYY-MM-DD"})
	}

	summary, err := h.attendanceService.GetSummary(start, end)
	if err != nil {
		return c.Status(attendanceStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"data": summary})
}

func attendanceStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrAttendanceNotFound), errors.Is(err, service.ErrUserNotFound):
		return 404
	case errors.Is(err, service.ErrUnauthorizedAttendance), errors.Is(err, service.ErrInactiveClockIn):
		return 403
	case errors.Is(err, service.ErrAlreadyClockedIn), errors.Is(err, service.ErrNotClockedIn):
		return 409
	case errors.Is(err, validator.ErrInvalid),
		errors.Is(err, service.ErrClockOutBeforeClockIn),
		errors.Is(err, service.ErrInvalidMonthFormat),
		errors.Is(err, service.ErrInvalidRange):
		return 400
	default:
		return 500
	}
}
