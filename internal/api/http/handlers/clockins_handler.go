package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/davisgreg1/valet-time-keeping/internal/api/dto"
	"github.com/davisgreg1/valet-time-keeping/internal/domain"
	"github.com/davisgreg1/valet-time-keeping/internal/service"
	apperrors "github.com/davisgreg1/valet-time-keeping/pkg/util"
)

// ClockInsHandler exposes clock-in tracking endpoints.
type ClockInsHandler struct {
	clockIns *service.ClockInService
}

// NewClockInsHandler constructs handler.
func NewClockInsHandler(clockIns *service.ClockInService) *ClockInsHandler {
	return &ClockInsHandler{clockIns: clockIns}
}

func valetFromContext(c *fiber.Ctx) (*domain.ValetAccount, error) {
	actor, err := actorFromContext(c)
	if err != nil {
		return nil, err
	}
	if actor.Valet == nil {
		return nil, apperrors.NewForbidden("clock-in tracking applies to valet accounts only")
	}
	return actor.Valet, nil
}

// Clock handles POST /clock-ins. The event type alternates automatically.
func (h *ClockInsHandler) Clock(c *fiber.Ctx) error {
	valet, err := valetFromContext(c)
	if err != nil {
		return err
	}

	var req dto.ClockRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	event, err := h.clockIns.Clock(c.UserContext(), valet, req.Latitude, req.Longitude, req.Address)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewClockEventResponse(event)})
}

// History handles GET /clock-ins/history.
func (h *ClockInsHandler) History(c *fiber.Ctx) error {
	valet, err := valetFromContext(c)
	if err != nil {
		return err
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	history, err := h.clockIns.History(c.UserContext(), valet.ID, limit)
	if err != nil {
		return err
	}

	responses := make([]dto.ClockEventResponse, 0, len(history))
	for i := range history {
		responses = append(responses, dto.NewClockEventResponse(&history[i]))
	}
	return c.JSON(fiber.Map{"data": responses})
}

// Today handles GET /clock-ins/today.
func (h *ClockInsHandler) Today(c *fiber.Ctx) error {
	valet, err := valetFromContext(c)
	if err != nil {
		return err
	}

	summary, err := h.clockIns.TodaySummary(c.UserContext(), valet.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewSummaryResponse(summary)})
}

// Recent handles GET /clock-ins/recent, the admin live-activity feed.
func (h *ClockInsHandler) Recent(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	recent, err := h.clockIns.LiveActivity(c.UserContext(), actor, limit)
	if err != nil {
		return err
	}

	responses := make([]dto.ClockEventResponse, 0, len(recent))
	for i := range recent {
		responses = append(responses, dto.NewClockEventResponse(&recent[i]))
	}
	return c.JSON(fiber.Map{"data": responses})
}

// Report handles GET /reports?from=&to= with RFC 3339 bounds.
func (h *ClockInsHandler) Report(c *fiber.Ctx) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}

	from, err := time.Parse(time.RFC3339, c.Query("from"))
	if err != nil {
		return apperrors.NewValidationError("from must be an RFC 3339 timestamp", nil)
	}
	to, err := time.Parse(time.RFC3339, c.Query("to"))
	if err != nil {
		return apperrors.NewValidationError("to must be an RFC 3339 timestamp", nil)
	}

	rows, err := h.clockIns.Report(c.UserContext(), actor, from, to)
	if err != nil {
		return err
	}

	responses := make([]dto.ReportRowResponse, 0, len(rows))
	for _, row := range rows {
		responses = append(responses, dto.ReportRowResponse{
			ValetID:    row.ValetID,
			ValetName:  row.ValetName,
			TotalHours: row.TotalTime.Hours(),
			EventCount: row.EventCount,
			ShiftCount: row.ShiftCount,
		})
	}
	return c.JSON(fiber.Map{"data": responses})
}
