package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"go-timeclock/internal/service"
	"go-timeclock/pkg/validator"
)

type SalesHandler struct {
	salesService    service.SalesService
	registerService service.RegisterService
	loc             *time.Location
}

func NewSalesHandler(salesService service.SalesService, registerService service.RegisterService, loc *time.Location) *SalesHandler {
	return &SalesHandler{salesService: salesService, registerService: registerService, loc: loc}
}

// RecordTransaction
// POST /api/v1/sales
func (h *SalesHandler) RecordTransaction(c *fiber.Ctx) error {
	var req service.RecordTransactionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	tx, err := h.salesService.RecordTransaction(&req, actorID(c))
	if err != nil {
		return c.Status(salesStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(201).JSON(fiber.Map{
		"message": "Transaction recorded",
		"data":    tx,
	})
}

// DeleteTransaction
// DELETE /api/v1/sales/:id
func (h *SalesHandler) DeleteTransaction(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid transaction ID"})
	}

	if err := h.salesService.DeleteTransaction(id, actorID(c)); err != nil {
		return c.Status(salesStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"message": "Transaction deleted successfully"})
}

// DailyReport
// GET /api/v1/sales/report?start=YYYY-MM-DD&end=YYYY-MM-DD
func (h *SalesHandler) DailyReport(c *fiber.Ctx) error {
	start, end, err := parseDateRange(c, h.loc, time.Now())
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid date format, use YYYY-MM-DD"})
	}

	report, err := h.salesService.DailyReport(start, end)
	if err != nil {
		return c.Status(salesStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"data": report})
}

// OpenRegister
// POST /api/v1/register/open
func (h *SalesHandler) OpenRegister(c *fiber.Ctx) error {
	var req service.OpenRegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	session, err := h.registerService.Open(&req, actorEmail(c))
	if err != nil {
		return c.Status(registerStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(201).JSON(fiber.Map{
		"message": "Register opened",
		"data":    session,
	})
}

// CloseRegister
// POST /api/v1/register/close
func (h *SalesHandler) CloseRegister(c *fiber.Ctx) error {
	var req service.CloseRegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	session, err := h.registerService.Close(&req, actorEmail(c))
	if err != nil {
		return c.Status(registerStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"message": "Register closed",
		"data":    session,
	})
}

// CurrentRegister
// GET /api/v1/register/current
func (h *SalesHandler) CurrentRegister(c *fiber.Ctx) error {
	session, err := h.registerService.Current()
	if err != nil {
		return c.Status(registerStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"data": session})
}

func registerStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrRegisterNotOpen):
		return 404
	case errors.Is(err, service.ErrRegisterAlreadyOpen):
		return 409
	case errors.Is(err, validator.ErrInvalid):
		return 400
	default:
		return 500
	}
}

func salesStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrTransactionNotFound):
		return 404
	case errors.Is(err, validator.ErrInvalid),
		errors.Is(err, service.ErrUnknownAttribution),
		errors.Is(err, service.ErrInvalidRange):
		return 400
	default:
		return 500
	}
}
