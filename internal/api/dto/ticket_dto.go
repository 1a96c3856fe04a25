package dto

import (
	"time"

	"github.com/spec-kit/middleman-engine/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Kind         domain.TicketKind `json:"kind"`
	RequesterID  int64             `json:"requester_id"`
	Counterparty string            `json:"counterparty"`
	Tier         domain.Tier       `json:"tier"`
	Giving       string            `json:"giving"`
	Receiving    string            `json:"receiving"`
	CanJoinLinks string            `json:"can_join_links"`
	MatchType    string            `json:"match_type"`
}

// ActorRequest carries the acting user for a lifecycle transition.
type ActorRequest struct {
	ActorID int64 `json:"actor_id"`
}

// ParticipantRequest carries the actor plus the target user.
type ParticipantRequest struct {
	ActorID int64 `json:"actor_id"`
	UserID  int64 `json:"user_id"`
}

// TicketResponse is the wire form of a ticket.
type TicketResponse struct {
	ID           int64               `json:"id"`
	Kind         domain.TicketKind   `json:"kind"`
	ChannelID    *int64              `json:"channel_id"`
	RequesterID  int64               `json:"requester_id"`
	Counterparty string              `json:"counterparty"`
	Tier         domain.Tier         `json:"tier"`
	TierLabel    string              `json:"tier_label"`
	Giving       string              `json:"giving,omitempty"`
	Receiving    string              `json:"receiving,omitempty"`
	CanJoinLinks string              `json:"can_join_links,omitempty"`
	MatchType    string              `json:"match_type,omitempty"`
	ClaimedBy    *int64              `json:"claimed_by"`
	Status       domain.TicketStatus `json:"status"`
	CreatedAt    time.Time           `json:"created_at"`
	ClosedAt     *time.Time          `json:"closed_at"`
}

// ConfirmResponse reports confirmation quorum state.
type ConfirmResponse struct {
	Count    int  `json:"count"`
	Quorum   bool `json:"quorum"`
	Repeated bool `json:"repeated"`
}

// AuditEntryResponse is one transition-log row.
type AuditEntryResponse struct {
	ID        int64             `json:"id"`
	TicketID  int64             `json:"ticket_id"`
	Kind      domain.TicketKind `json:"kind"`
	Action    string            `json:"action"`
	ActorID   int64             `json:"actor_id"`
	CreatedAt time.Time         `json:"created_at"`
}

// PanelRequest payload.
type PanelRequest struct {
	ChannelID int64 `json:"channel_id"`
	MessageID int64 `json:"message_id"`
}

// PanelResponse wire form.
type PanelResponse struct {
	Kind      domain.TicketKind `json:"kind"`
	ChannelID int64             `json:"channel_id"`
	MessageID int64             `json:"message_id"`
	UpdatedAt time.Time         `json:"updated_at"`
}
