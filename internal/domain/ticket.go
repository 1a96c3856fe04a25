package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen   TicketStatus = "OPEN"
	TicketStatusClosed TicketStatus = "CLOSED"
)

// TicketKind discriminates the two mediation flows sharing one state machine.
type TicketKind string

const (
	KindTrade TicketKind = "MM"
	KindMatch TicketKind = "PVP"
)

// ValidKind reports whether k is a recognized ticket kind.
func ValidKind(k TicketKind) bool {
	return k == KindTrade || k == KindMatch
}

// TicketPayload carries the kind-specific free-text fields. Trade tickets
// fill Giving/Receiving; match tickets additionally fill CanJoinLinks and
// MatchType.
type TicketPayload struct {
	Giving       string
	Receiving    string
	CanJoinLinks string
	MatchType    string
}

// Ticket is the aggregate for one trade-intermediation request.
//
// ID and ChannelID are immutable once set; ChannelID is bound exactly once
// after channel provisioning. Status only ever moves OPEN -> CLOSED.
type Ticket struct {
	ID           int64
	Kind         TicketKind
	ChannelID    *int64
	RequesterID  int64
	Counterparty string
	Payload      TicketPayload
	Tier         Tier
	ClaimedBy    *int64
	Status       TicketStatus
	CreatedAt    time.Time
	ClosedAt     *time.Time
}

// Open reports whether the ticket still accepts transitions.
func (t *Ticket) Open() bool {
	return t.Status == TicketStatusOpen
}

// Confirmation records one participant's confirmation press. Unique per
// (ticket, kind, actor); a repeat from the same actor is a no-op.
type Confirmation struct {
	TicketID  int64
	Kind      TicketKind
	ActorID   int64
	CreatedAt time.Time
}

// Proof records a completed trade attested by a middleman.
type Proof struct {
	ID          int64
	TicketID    int64
	Kind        TicketKind
	MiddlemanID int64
	CreatedAt   time.Time
}

// Panel binds a ticket-creation panel message to its channel so the
// gateway can restore interactive components after a restart.
type Panel struct {
	Kind      TicketKind
	ChannelID int64
	MessageID int64
	UpdatedAt time.Time
}
