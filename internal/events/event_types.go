package events

import (
	"time"

	"github.com/spec-kit/middleman-engine/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated      EventType = "ticket_created"
	EventTicketClaimed      EventType = "ticket_claimed"
	EventTicketUnclaimed    EventType = "ticket_unclaimed"
	EventQuorumReached      EventType = "quorum_reached"
	EventProofSubmitted     EventType = "proof_submitted"
	EventTicketClosed       EventType = "ticket_closed"
	EventParticipantAdded   EventType = "participant_added"
	EventParticipantRemoved EventType = "participant_removed"
)

// Event represents a domain event emitted by the lifecycle service.
type Event struct {
	ID        string            `json:"id"`
	Type      EventType         `json:"type"`
	TicketID  int64             `json:"ticket_id"`
	Kind      domain.TicketKind `json:"kind"`
	ChannelID int64             `json:"channel_id,omitempty"`
	ActorID   int64             `json:"actor_id"`
	Timestamp time.Time         `json:"timestamp"`
	Payload   interface{}       `json:"payload,omitempty"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	RequesterID  int64       `json:"requester_id"`
	Counterparty string      `json:"counterparty"`
	Tier         domain.Tier `json:"tier"`
}

// TicketClaimedPayload payload.
type TicketClaimedPayload struct {
	ClaimantID int64       `json:"claimant_id"`
	Tier       domain.Tier `json:"tier"`
}

// QuorumReachedPayload payload.
type QuorumReachedPayload struct {
	Count int `json:"count"`
}

// ParticipantPayload payload for add/remove events.
type ParticipantPayload struct {
	UserID int64 `json:"user_id"`
}
