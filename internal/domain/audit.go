package domain

import (
	"fmt"
	"time"
)

// AuditAction labels one lifecycle transition in the append-only log.
type AuditAction string

const (
	AuditCreated        AuditAction = "created"
	AuditClaimed        AuditAction = "claimed"
	AuditUnclaimed      AuditAction = "unclaimed"
	AuditProofSubmitted AuditAction = "proof_submitted"
	AuditClosed         AuditAction = "closed"
)

// AuditUserAdded labels the addition of a participant to the ticket channel.
func AuditUserAdded(userID int64) AuditAction {
	return AuditAction(fmt.Sprintf("user_added:%d", userID))
}

// AuditUserRemoved labels the removal of a participant.
func AuditUserRemoved(userID int64) AuditAction {
	return AuditAction(fmt.Sprintf("user_removed:%d", userID))
}

// AuditEntry is an immutable record of one accepted transition.
type AuditEntry struct {
	ID        int64
	TicketID  int64
	Kind      TicketKind
	Action    AuditAction
	ActorID   int64
	CreatedAt time.Time
}
