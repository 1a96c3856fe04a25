package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/middleman-engine/internal/api/dto"
	"github.com/spec-kit/middleman-engine/internal/domain"
	"github.com/spec-kit/middleman-engine/internal/service"
	apperrors "github.com/spec-kit/middleman-engine/pkg/util"
)

// PanelsHandler stores request-panel message bindings for the gateway.
type PanelsHandler struct {
	panels *service.PanelService
}

// NewPanelsHandler constructs handler.
func NewPanelsHandler(panels *service.PanelService) *PanelsHandler {
	return &PanelsHandler{panels: panels}
}

// Save PUT /panels/:kind.
func (h *PanelsHandler) Save(c *fiber.Ctx) error {
	var req dto.PanelRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	kind := domain.TicketKind(c.Params("kind"))
	if err := h.panels.Save(c.UserContext(), kind, req.ChannelID, req.MessageID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.PanelResponse{
		Kind:      kind,
		ChannelID: req.ChannelID,
		MessageID: req.MessageID,
	}})
}

// Get GET /panels/:kind.
func (h *PanelsHandler) Get(c *fiber.Ctx) error {
	panel, err := h.panels.Get(c.UserContext(), domain.TicketKind(c.Params("kind")))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.PanelResponse{
		Kind:      panel.Kind,
		ChannelID: panel.ChannelID,
		MessageID: panel.MessageID,
		UpdatedAt: panel.UpdatedAt,
	}})
}
