package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/davisgreg1/valet-time-keeping/internal/api/dto"
	"github.com/davisgreg1/valet-time-keeping/internal/authz"
	"github.com/davisgreg1/valet-time-keeping/internal/repository"
	"github.com/davisgreg1/valet-time-keeping/internal/service"
	apperrors "github.com/davisgreg1/valet-time-keeping/pkg/util"
)

// ValetsHandler exposes the admin valet-management endpoints.
type ValetsHandler struct {
	valets *service.ValetService
}

// NewValetsHandler constructs handler.
func NewValetsHandler(valets *service.ValetService) *ValetsHandler {
	return &ValetsHandler{valets: valets}
}

func actorFromContext(c *fiber.Ctx) (*authz.Resolution, error) {
	verdict, ok := authz.VerdictFromContext(c)
	if !ok || verdict.Resolution == nil {
		return nil, apperrors.NewUnauthorized("", "authentication required")
	}
	return verdict.Resolution, nil
}

// Create handles POST /valets.
func (h *ValetsHandler) Create(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}

	var req dto.CreateValetRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	valet, password, err := h.valets.CreateValet(c.UserContext(), actor, service.NewValetInput{
		Email:             req.Email,
		TemporaryPassword: req.TemporaryPassword,
		FullName:          req.FullName,
		PhoneNumber:       req.PhoneNumber,
		EmployeeID:        req.EmployeeID,
		Department:        req.Department,
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{
			"valet":              dto.NewValetResponse(valet),
			"temporary_password": password,
		},
	})
}

// List handles GET /valets. Supports ?active=true|false and ?search=.
func (h *ValetsHandler) List(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}

	filter := repository.ValetFilter{Search: c.Query("search")}
	switch c.Query("active") {
	case "true":
		active := true
		filter.Active = &active
	case "false":
		active := false
		filter.Active = &active
	}

	valets, err := h.valets.ListValets(c.UserContext(), actor, filter)
	if err != nil {
		return err
	}

	responses := make([]dto.ValetResponse, 0, len(valets))
	for i := range valets {
		responses = append(responses, dto.NewValetResponse(&valets[i]))
	}
	return c.JSON(fiber.Map{"data": responses})
}

// Stats handles GET /valets/stats: the admin dashboard overview.
func (h *ValetsHandler) Stats(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}

	stats, err := h.valets.WorkforceStats(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"total_valets":    stats.TotalValets,
		"active_valets":   stats.ActiveValets,
		"today_clock_ins": stats.TodayClockIns,
		"hours_today":     stats.HoursToday.Hours(),
	}})
}

// Get handles GET /valets/:id.
func (h *ValetsHandler) Get(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}

	valet, err := h.valets.GetValet(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewValetResponse(valet)})
}

// SetStatus handles PATCH /valets/:id/status.
func (h *ValetsHandler) SetStatus(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}

	var req dto.SetValetStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	if err := h.valets.SetActive(c.UserContext(), actor, c.Params("id"), req.IsActive); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"id": c.Params("id"), "is_active": req.IsActive}})
}

// Promote handles POST /valets/:id/promote.
func (h *ValetsHandler) Promote(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}

	if err := h.valets.Promote(c.UserContext(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"id": c.Params("id"), "is_admin": true}})
}

// Demote handles POST /valets/:id/demote.
func (h *ValetsHandler) Demote(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}

	if err := h.valets.Demote(c.UserContext(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"id": c.Params("id"), "is_admin": false}})
}

// Delete handles DELETE /valets/:id.
func (h *ValetsHandler) Delete(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}

	if err := h.valets.DeleteValet(c.UserContext(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
