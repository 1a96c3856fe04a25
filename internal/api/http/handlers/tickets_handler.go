package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/middleman-engine/internal/api/dto"
	"github.com/spec-kit/middleman-engine/internal/domain"
	"github.com/spec-kit/middleman-engine/internal/service"
	apperrors "github.com/spec-kit/middleman-engine/pkg/util"
)

// TicketsHandler exposes the ticket lifecycle to the gateway. Channel ids
// address tickets on every transition route because that is the handle the
// gateway holds.
type TicketsHandler struct {
	lifecycle *service.LifecycleService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(lifecycle *service.LifecycleService) *TicketsHandler {
	return &TicketsHandler{lifecycle: lifecycle}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.RequesterID <= 0 || strings.TrimSpace(req.Counterparty) == "" {
		return apperrors.NewValidationError("requester_id and counterparty required", nil)
	}

	ticket, err := h.lifecycle.CreateTicket(c.UserContext(), service.CreateTicketInput{
		Kind:         req.Kind,
		RequesterID:  req.RequesterID,
		Counterparty: req.Counterparty,
		Tier:         req.Tier,
		Payload: domain.TicketPayload{
			Giving:       req.Giving,
			Receiving:    req.Receiving,
			CanJoinLinks: req.CanJoinLinks,
			MatchType:    req.MatchType,
		},
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// GetTicket GET /channels/:channel_id/ticket.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	channelID, err := channelParam(c)
	if err != nil {
		return err
	}
	ticket, err := h.lifecycle.GetByChannel(c.UserContext(), channelID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// Claim POST /channels/:channel_id/claim.
func (h *TicketsHandler) Claim(c *fiber.Ctx) error {
	return h.transition(c, h.lifecycle.Claim)
}

// Unclaim POST /channels/:channel_id/unclaim.
func (h *TicketsHandler) Unclaim(c *fiber.Ctx) error {
	return h.transition(c, h.lifecycle.Unclaim)
}

// Confirm POST /channels/:channel_id/confirm.
func (h *TicketsHandler) Confirm(c *fiber.Ctx) error {
	channelID, actorID, err := transitionParams(c)
	if err != nil {
		return err
	}
	result, err := h.lifecycle.Confirm(c.UserContext(), channelID, actorID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ConfirmResponse{
		Count:    result.Count,
		Quorum:   result.Quorum,
		Repeated: result.Repeated,
	}})
}

// SubmitProof POST /channels/:channel_id/proof.
func (h *TicketsHandler) SubmitProof(c *fiber.Ctx) error {
	return h.transition(c, h.lifecycle.SubmitProof)
}

// Close POST /channels/:channel_id/close.
func (h *TicketsHandler) Close(c *fiber.Ctx) error {
	return h.transition(c, h.lifecycle.Close)
}

// AddParticipant POST /channels/:channel_id/participants.
func (h *TicketsHandler) AddParticipant(c *fiber.Ctx) error {
	return h.participants(c, h.lifecycle.AddParticipant)
}

// RemoveParticipant DELETE /channels/:channel_id/participants.
func (h *TicketsHandler) RemoveParticipant(c *fiber.Ctx) error {
	return h.participants(c, h.lifecycle.RemoveParticipant)
}

// ListOpen GET /tickets/open?kind=MM.
func (h *TicketsHandler) ListOpen(c *fiber.Ctx) error {
	kind := domain.TicketKind(c.Query("kind", string(domain.KindTrade)))
	tickets, err := h.lifecycle.ListOpen(c.UserContext(), kind)
	if err != nil {
		return err
	}
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketResponse(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// ListAudit GET /tickets/:id/audit.
func (h *TicketsHandler) ListAudit(c *fiber.Ctx) error {
	ticketID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || ticketID <= 0 {
		return apperrors.NewValidationError("invalid ticket id", nil)
	}
	entries, err := h.lifecycle.ListAudit(c.UserContext(), ticketID)
	if err != nil {
		return err
	}
	items := make([]dto.AuditEntryResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, dto.AuditEntryResponse{
			ID:        entry.ID,
			TicketID:  entry.TicketID,
			Kind:      entry.Kind,
			Action:    string(entry.Action),
			ActorID:   entry.ActorID,
			CreatedAt: entry.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

func (h *TicketsHandler) transition(c *fiber.Ctx, fn func(ctx context.Context, channelID, actorID int64) (*domain.Ticket, error)) error {
	channelID, actorID, err := transitionParams(c)
	if err != nil {
		return err
	}
	ticket, err := fn(c.UserContext(), channelID, actorID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

func (h *TicketsHandler) participants(c *fiber.Ctx, fn func(ctx context.Context, channelID, actorID, userID int64) (*domain.Ticket, error)) error {
	channelID, err := channelParam(c)
	if err != nil {
		return err
	}
	var req dto.ParticipantRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.ActorID <= 0 || req.UserID <= 0 {
		return apperrors.NewValidationError("actor_id and user_id required", nil)
	}
	ticket, err := fn(c.UserContext(), channelID, req.ActorID, req.UserID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

func channelParam(c *fiber.Ctx) (int64, error) {
	channelID, err := strconv.ParseInt(c.Params("channel_id"), 10, 64)
	if err != nil || channelID <= 0 {
		return 0, apperrors.NewValidationError("invalid channel id", nil)
	}
	return channelID, nil
}

func transitionParams(c *fiber.Ctx) (int64, int64, error) {
	channelID, err := channelParam(c)
	if err != nil {
		return 0, 0, err
	}
	var req dto.ActorRequest
	if err := c.BodyParser(&req); err != nil {
		return 0, 0, apperrors.NewValidationError("invalid payload", nil)
	}
	if req.ActorID <= 0 {
		return 0, 0, apperrors.NewValidationError("actor_id required", nil)
	}
	return channelID, req.ActorID, nil
}

func ticketResponse(ticket *domain.Ticket) dto.TicketResponse {
	return dto.TicketResponse{
		ID:           ticket.ID,
		Kind:         ticket.Kind,
		ChannelID:    ticket.ChannelID,
		RequesterID:  ticket.RequesterID,
		Counterparty: ticket.Counterparty,
		Tier:         ticket.Tier,
		TierLabel:    ticket.Tier.Label(),
		Giving:       ticket.Payload.Giving,
		Receiving:    ticket.Payload.Receiving,
		CanJoinLinks: ticket.Payload.CanJoinLinks,
		MatchType:    ticket.Payload.MatchType,
		ClaimedBy:    ticket.ClaimedBy,
		Status:       ticket.Status,
		CreatedAt:    ticket.CreatedAt,
		ClosedAt:     ticket.ClosedAt,
	}
}
