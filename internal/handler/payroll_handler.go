package handler

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"go-timeclock/internal/service"
)

type PayrollHandler struct {
	payrollService service.PayrollService
	exportService  service.ExportService
	loc            *time.Location
}

func NewPayrollHandler(payrollService service.PayrollService, exportService service.ExportService, loc *time.Location) *PayrollHandler {
	return &PayrollHandler{payrollService: payrollService, exportService: exportService, loc: loc}
}

// GetSummary
// GET /api/v1/payroll?start=YYYY-MM-DD&end=YYYY-MM-DD
func (h *PayrollHandler) GetSummary(c *fiber.Ctx) error {
	start, end, err := parseDateRange(c, h.loc, time.Now())
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid date format, use YYYY-MM-DD"})
	}

	summary, err := h.payrollService.Summary(start, end)
	if err != nil {
		return c.Status(payrollStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"data": summary})
}

// ExportXLSX streams the month's payroll as a workbook
// GET /api/v1/payroll/export?month=YYYY-MM
func (h *PayrollHandler) ExportXLSX(c *fiber.Ctx) error {
	month := c.Query("month", time.Now().In(h.loc).Format("2006-01"))

	buf, filename, err := h.exportService.PayrollXLSX(month)
	if err != nil {
		return c.Status(payrollStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}

	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(buf.Bytes())
}

func payrollStatus(err error) int {
	if errors.Is(err, service.ErrInvalidRange) || errors.Is(err, service.ErrInvalidMonthFormat) {
		return 400
	}
	return 500
}
