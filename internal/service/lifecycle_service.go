package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/middleman-engine/internal/domain"
	"github.com/spec-kit/middleman-engine/internal/events"
	"github.com/spec-kit/middleman-engine/internal/observability"
	"github.com/spec-kit/middleman-engine/internal/platform"
	"github.com/spec-kit/middleman-engine/internal/repository"
	apperrors "github.com/spec-kit/middleman-engine/pkg/util"
)

// quorumSize is the number of distinct participant confirmations required
// before the middleman may proceed.
const quorumSize = 2

// LifecycleService is the orchestrator for the ticket state machine:
// Open/Unclaimed -> Open/Claimed -> Closed, with unclaim as the only
// back-transition. It is the single caller of the claim critical section.
type LifecycleService struct {
	tickets       repository.TicketRepository
	confirmations repository.ConfirmationRepository
	audit         repository.AuditRepository
	proofs        repository.ProofRepository
	tiers         *TierService
	provisioner   platform.ChannelProvisioner
	dispatcher    events.Dispatcher
	metrics       *observability.Metrics
	logger        *zap.Logger

	locks   *channelLocks
	auditCh chan auditRecord
	done    chan struct{}
}

// LifecycleDependencies bundles collaborators for the lifecycle service.
type LifecycleDependencies struct {
	TicketRepo       repository.TicketRepository
	ConfirmationRepo repository.ConfirmationRepository
	AuditRepo        repository.AuditRepository
	ProofRepo        repository.ProofRepository
	Tiers            *TierService
	Provisioner      platform.ChannelProvisioner
	Dispatcher       events.Dispatcher
	Metrics          *observability.Metrics
	Logger           *zap.Logger
}

// CreateTicketInput describes a validated creation request.
type CreateTicketInput struct {
	Kind         domain.TicketKind
	RequesterID  int64
	Counterparty string
	Payload      domain.TicketPayload
	Tier         domain.Tier
}

// ConfirmResult reports the distinct-confirmer state after a confirmation.
type ConfirmResult struct {
	Count    int
	Quorum   bool
	Repeated bool
}

type auditRecord struct {
	ticketID int64
	kind     domain.TicketKind
	action   domain.AuditAction
	actorID  int64
}

// NewLifecycleService constructs the service and starts the audit writer.
func NewLifecycleService(deps LifecycleDependencies) *LifecycleService {
	s := &LifecycleService{
		tickets:       deps.TicketRepo,
		confirmations: deps.ConfirmationRepo,
		audit:         deps.AuditRepo,
		proofs:        deps.ProofRepo,
		tiers:         deps.Tiers,
		provisioner:   deps.Provisioner,
		dispatcher:    deps.Dispatcher,
		metrics:       deps.Metrics,
		logger:        deps.Logger,
		locks:         newChannelLocks(),
		auditCh:       make(chan auditRecord, 256),
		done:          make(chan struct{}),
	}
	go s.runAuditWriter()
	return s
}

// Stop flushes and stops the audit writer.
func (s *LifecycleService) Stop() {
	close(s.auditCh)
	<-s.done
}

// runAuditWriter drains audit records on a single goroutine so entries for
// a ticket land in the order their transitions were accepted. Failures are
// logged and swallowed; the log is diagnostic, not authoritative.
func (s *LifecycleService) runAuditWriter() {
	defer close(s.done)
	for rec := range s.auditCh {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := s.audit.Append(ctx, rec.ticketID, rec.kind, rec.action, rec.actorID); err != nil {
			s.logger.Warn("audit append failed",
				zap.Int64("ticket_id", rec.ticketID),
				zap.String("action", string(rec.action)),
				zap.Error(err))
		}
		cancel()
	}
}

func (s *LifecycleService) appendAudit(ticketID int64, kind domain.TicketKind, action domain.AuditAction, actorID int64) {
	if s.metrics != nil {
		s.metrics.RecordTransition(string(kind), string(action))
	}
	select {
	case s.auditCh <- auditRecord{ticketID: ticketID, kind: kind, action: action, actorID: actorID}:
	default:
		s.logger.Warn("audit queue full, dropping entry",
			zap.Int64("ticket_id", ticketID),
			zap.String("action", string(action)))
	}
}

// CreateTicket runs the duplicate guard, creates the store record,
// provisions the channel, and binds it. A provisioning failure rolls the
// just-created record back so no orphaned ticket survives.
func (s *LifecycleService) CreateTicket(ctx context.Context, input CreateTicketInput) (*domain.Ticket, error) {
	if !domain.ValidKind(input.Kind) {
		return nil, apperrors.NewValidationError("unknown ticket kind", map[string]any{"kind": input.Kind})
	}
	if !input.Tier.Valid() {
		return nil, apperrors.NewValidationError("unknown tier", map[string]any{"tier": input.Tier})
	}
	counterparty := strings.TrimSpace(input.Counterparty)
	if counterparty == "" {
		return nil, apperrors.NewValidationError("counterparty required", nil)
	}

	dup, err := s.tickets.HasOpenDuplicate(ctx, input.RequesterID, counterparty, input.Tier)
	if err != nil {
		return nil, apperrors.NewStorageUnavailable(err)
	}
	if dup {
		return nil, apperrors.NewDuplicateTicket(counterparty, string(input.Tier))
	}

	ticket, err := s.tickets.Create(ctx, repository.TicketCreateParams{
		Kind:         input.Kind,
		RequesterID:  input.RequesterID,
		Counterparty: counterparty,
		Payload:      input.Payload,
		Tier:         input.Tier,
	})
	if err != nil {
		// The unique partial index backstops the pre-insert check, so a
		// concurrent identical request surfaces here.
		if errors.Is(err, repository.ErrDuplicateOpenTicket) {
			return nil, apperrors.NewDuplicateTicket(counterparty, string(input.Tier))
		}
		return nil, apperrors.NewStorageUnavailable(err)
	}

	channelID, err := s.provisioner.CreateChannel(ctx, channelName(ticket), s.channelGrants(ticket))
	if err != nil {
		if rbErr := s.tickets.DeleteUnbound(ctx, ticket.ID); rbErr != nil {
			s.logger.Error("rollback of unprovisioned ticket failed",
				zap.Int64("ticket_id", ticket.ID), zap.Error(rbErr))
		}
		return nil, apperrors.NewInternalError(fmt.Errorf("provision channel: %w", err))
	}

	if err := s.tickets.BindChannel(ctx, ticket.ID, channelID); err != nil {
		if errors.Is(err, repository.ErrChannelBound) {
			return nil, apperrors.NewConflict("ticket channel already bound", map[string]any{"ticket_id": ticket.ID})
		}
		return nil, apperrors.MapStoreError(err, "ticket", map[string]any{"ticket_id": ticket.ID})
	}
	ticket.ChannelID = &channelID

	s.appendAudit(ticket.ID, ticket.Kind, domain.AuditCreated, input.RequesterID)
	s.publish(ctx, events.Event{
		Type:      events.EventTicketCreated,
		TicketID:  ticket.ID,
		Kind:      ticket.Kind,
		ChannelID: channelID,
		ActorID:   input.RequesterID,
		Payload: events.TicketCreatedPayload{
			RequesterID:  input.RequesterID,
			Counterparty: counterparty,
			Tier:         input.Tier,
		},
	})
	return ticket, nil
}

// channelName builds the channel slug, <kind>-<tier>-<id>, on the
// store-assigned ticket id.
func channelName(ticket *domain.Ticket) string {
	return fmt.Sprintf("%s-%s-%d", strings.ToLower(string(ticket.Kind)), ticket.Tier, ticket.ID)
}

// channelGrants makes the channel visible to the requester and to every
// tier meeting the ticket's required tier.
func (s *LifecycleService) channelGrants(ticket *domain.Ticket) []platform.PermissionGrant {
	grants := []platform.PermissionGrant{
		{ActorID: ticket.RequesterID, AllowView: true, AllowWrite: true},
	}
	for _, roleID := range s.tiers.RolesMeeting(ticket.Tier) {
		grants = append(grants, platform.PermissionGrant{RoleID: roleID, AllowView: true, AllowWrite: true})
	}
	return grants
}

// Claim attempts an exclusive claim. The tier gate runs before the
// critical section (it reads immutable role state only); the claimant
// re-read and write run inside it, which is what makes concurrent claims
// resolve to exactly one winner.
func (s *LifecycleService) Claim(ctx context.Context, channelID, actorID int64) (*domain.Ticket, error) {
	actorTier, ok, err := s.tiers.ResolveTier(ctx, actorID)
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("resolve tier: %w", err))
	}
	if !ok {
		return nil, apperrors.NewForbidden("only middlemen can claim tickets", nil)
	}

	ticket, err := s.tickets.GetByChannel(ctx, channelID)
	if err != nil {
		return nil, apperrors.MapStoreError(err, "ticket", map[string]any{"channel_id": channelID})
	}
	if !ticket.Open() {
		return nil, apperrors.NewConflict("ticket is closed", map[string]any{"ticket_id": ticket.ID})
	}
	if !actorTier.Meets(ticket.Tier) {
		return nil, apperrors.NewForbidden("tier too low to claim this ticket", map[string]any{
			"required_tier":  ticket.Tier,
			"required_label": ticket.Tier.Label(),
			"required_limit": ticket.Tier.Limit(),
		})
	}

	unlock := s.locks.Lock(channelID)
	fresh, err := s.tickets.GetByChannel(ctx, channelID)
	if err != nil {
		unlock()
		return nil, apperrors.MapStoreError(err, "ticket", map[string]any{"channel_id": channelID})
	}
	// Re-checked under the lock: a close may have committed since the
	// pre-lock read, and Closed is terminal.
	if !fresh.Open() {
		unlock()
		return nil, apperrors.NewConflict("ticket is closed", map[string]any{"ticket_id": fresh.ID})
	}
	if fresh.ClaimedBy != nil {
		claimant := *fresh.ClaimedBy
		unlock()
		return nil, apperrors.NewAlreadyClaimed(claimant)
	}
	if err := s.tickets.SetClaimant(ctx, channelID, actorID); err != nil {
		unlock()
		return nil, apperrors.MapStoreError(err, "ticket", map[string]any{"channel_id": channelID})
	}
	unlock()

	fresh.ClaimedBy = &actorID
	s.appendAudit(fresh.ID, fresh.Kind, domain.AuditClaimed, actorID)
	s.publish(ctx, events.Event{
		Type:      events.EventTicketClaimed,
		TicketID:  fresh.ID,
		Kind:      fresh.Kind,
		ChannelID: channelID,
		ActorID:   actorID,
		Payload:   events.TicketClaimedPayload{ClaimantID: actorID, Tier: fresh.Tier},
	})
	return fresh, nil
}

// Unclaim releases a claim. Only the claimant or an admin may unclaim;
// the check repeats on the fresh read inside the critical section.
func (s *LifecycleService) Unclaim(ctx context.Context, channelID, actorID int64) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByChannel(ctx, channelID)
	if err != nil {
		return nil, apperrors.MapStoreError(err, "ticket", map[string]any{"channel_id": channelID})
	}
	if !ticket.Open() {
		return nil, apperrors.NewConflict("ticket is closed", map[string]any{"ticket_id": ticket.ID})
	}

	admin, err := s.tiers.IsAdmin(ctx, actorID)
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("admin check: %w", err))
	}

	unlock := s.locks.Lock(channelID)
	fresh, err := s.tickets.GetByChannel(ctx, channelID)
	if err != nil {
		unlock()
		return nil, apperrors.MapStoreError(err, "ticket", map[string]any{"channel_id": channelID})
	}
	if !fresh.Open() {
		unlock()
		return nil, apperrors.NewConflict("ticket is closed", map[string]any{"ticket_id": fresh.ID})
	}
	if fresh.ClaimedBy == nil {
		unlock()
		return nil, apperrors.NewConflict("ticket is not claimed", map[string]any{"ticket_id": fresh.ID})
	}
	if *fresh.ClaimedBy != actorID && !admin {
		unlock()
		return nil, apperrors.NewForbidden("only the claimer or an admin can unclaim", nil)
	}
	if err := s.tickets.ClearClaimant(ctx, channelID); err != nil {
		unlock()
		return nil, apperrors.MapStoreError(err, "ticket", map[string]any{"channel_id": channelID})
	}
	unlock()

	fresh.ClaimedBy = nil
	s.appendAudit(fresh.ID, fresh.Kind, domain.AuditUnclaimed, actorID)
	s.publish(ctx, events.Event{
		Type:      events.EventTicketUnclaimed,
		TicketID:  fresh.ID,
		Kind:      fresh.Kind,
		ChannelID: channelID,
		ActorID:   actorID,
	})
	return fresh, nil
}

// Confirm records a participant confirmation. Recording is idempotent per
// actor and serialized per channel, so the distinct count crosses the
// threshold in exactly one call and the quorum event fires exactly once.
func (s *LifecycleService) Confirm(ctx context.Context, channelID, actorID int64) (*ConfirmResult, error) {
	unlock := s.locks.Lock(channelID)
	ticket, err := s.tickets.GetByChannel(ctx, channelID)
	if err != nil {
		unlock()
		return nil, apperrors.MapStoreError(err, "ticket", map[string]any{"channel_id": channelID})
	}
	if !ticket.Open() {
		unlock()
		return nil, apperrors.NewConflict("ticket is closed", map[string]any{"ticket_id": ticket.ID})
	}

	inserted, count, err := s.confirmations.Add(ctx, ticket.ID, ticket.Kind, actorID)
	unlock()
	if err != nil {
		return nil, apperrors.NewStorageUnavailable(err)
	}

	result := &ConfirmResult{Count: count, Quorum: count >= quorumSize, Repeated: !inserted}
	if inserted && count == quorumSize {
		s.publish(ctx, events.Event{
			Type:      events.EventQuorumReached,
			TicketID:  ticket.ID,
			Kind:      ticket.Kind,
			ChannelID: channelID,
			ActorID:   actorID,
			Payload:   events.QuorumReachedPayload{Count: count},
		})
	}
	return result, nil
}

// SubmitProof records a completion attestation. Ticket status is not
// changed; closing is a separate transition.
func (s *LifecycleService) SubmitProof(ctx context.Context, channelID, actorID int64) (*domain.Ticket, error) {
	hasRole, err := s.tiers.HasTrustRole(ctx, actorID)
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("resolve tier: %w", err))
	}
	if !hasRole {
		return nil, apperrors.NewForbidden("only middlemen can submit proof", nil)
	}

	ticket, err := s.tickets.GetByChannel(ctx, channelID)
	if err != nil {
		return nil, apperrors.MapStoreError(err, "ticket", map[string]any{"channel_id": channelID})
	}
	if err := s.proofs.Add(ctx, ticket.ID, ticket.Kind, actorID); err != nil {
		return nil, apperrors.NewStorageUnavailable(err)
	}

	s.appendAudit(ticket.ID, ticket.Kind, domain.AuditProofSubmitted, actorID)
	s.publish(ctx, events.Event{
		Type:      events.EventProofSubmitted,
		TicketID:  ticket.ID,
		Kind:      ticket.Kind,
		ChannelID: channelID,
		ActorID:   actorID,
	})
	return ticket, nil
}

// Close marks the ticket closed and emits the channel teardown request.
// Closing an already-closed ticket is a no-op, not an error. The close
// runs inside the channel's critical section so it cannot interleave with
// a claim or a concurrent close; only the call that actually transitions
// the ticket records the audit entry and requests teardown.
func (s *LifecycleService) Close(ctx context.Context, channelID, actorID int64) (*domain.Ticket, error) {
	hasRole, err := s.tiers.HasTrustRole(ctx, actorID)
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("resolve tier: %w", err))
	}
	if !hasRole {
		return nil, apperrors.NewForbidden("only middlemen can close tickets", nil)
	}

	unlock := s.locks.Lock(channelID)
	ticket, err := s.tickets.GetByChannel(ctx, channelID)
	if err != nil {
		unlock()
		return nil, apperrors.MapStoreError(err, "ticket", map[string]any{"channel_id": channelID})
	}
	if !ticket.Open() {
		unlock()
		return ticket, nil
	}

	if err := s.tickets.Close(ctx, channelID); err != nil {
		unlock()
		return nil, apperrors.MapStoreError(err, "ticket", map[string]any{"channel_id": channelID})
	}
	closed, err := s.tickets.GetByChannel(ctx, channelID)
	if err != nil {
		unlock()
		return nil, apperrors.MapStoreError(err, "ticket", map[string]any{"channel_id": channelID})
	}
	unlock()

	s.appendAudit(closed.ID, closed.Kind, domain.AuditClosed, actorID)
	s.publish(ctx, events.Event{
		Type:      events.EventTicketClosed,
		TicketID:  closed.ID,
		Kind:      closed.Kind,
		ChannelID: channelID,
		ActorID:   actorID,
	})

	// Teardown is requested after the close is durable; a failure here
	// leaves a closed ticket with a live channel, which the gateway can
	// reconcile, so it is logged rather than surfaced.
	if err := s.provisioner.DeleteChannel(ctx, channelID); err != nil {
		s.logger.Warn("channel teardown failed",
			zap.Int64("channel_id", channelID), zap.Error(err))
	}
	return closed, nil
}

// AddParticipant grants a user access to the ticket channel. Permitted to
// the requester, the claimant, or any trust-role holder.
func (s *LifecycleService) AddParticipant(ctx context.Context, channelID, actorID, userID int64) (*domain.Ticket, error) {
	ticket, err := s.participantGuard(ctx, channelID, actorID)
	if err != nil {
		return nil, err
	}
	if err := s.provisioner.SetPermission(ctx, channelID, userID, true, true); err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("set permission: %w", err))
	}
	s.appendAudit(ticket.ID, ticket.Kind, domain.AuditUserAdded(userID), actorID)
	s.publish(ctx, events.Event{
		Type:      events.EventParticipantAdded,
		TicketID:  ticket.ID,
		Kind:      ticket.Kind,
		ChannelID: channelID,
		ActorID:   actorID,
		Payload:   events.ParticipantPayload{UserID: userID},
	})
	return ticket, nil
}

// RemoveParticipant revokes a user's channel access. The requester and the
// assigned middleman cannot be removed.
func (s *LifecycleService) RemoveParticipant(ctx context.Context, channelID, actorID, userID int64) (*domain.Ticket, error) {
	ticket, err := s.participantGuard(ctx, channelID, actorID)
	if err != nil {
		return nil, err
	}
	if userID == ticket.RequesterID {
		return nil, apperrors.NewConflict("cannot remove the ticket requester", nil)
	}
	if ticket.ClaimedBy != nil && userID == *ticket.ClaimedBy {
		return nil, apperrors.NewConflict("cannot remove the assigned middleman", nil)
	}
	if err := s.provisioner.SetPermission(ctx, channelID, userID, false, false); err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("set permission: %w", err))
	}
	s.appendAudit(ticket.ID, ticket.Kind, domain.AuditUserRemoved(userID), actorID)
	s.publish(ctx, events.Event{
		Type:      events.EventParticipantRemoved,
		TicketID:  ticket.ID,
		Kind:      ticket.Kind,
		ChannelID: channelID,
		ActorID:   actorID,
		Payload:   events.ParticipantPayload{UserID: userID},
	})
	return ticket, nil
}

func (s *LifecycleService) participantGuard(ctx context.Context, channelID, actorID int64) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByChannel(ctx, channelID)
	if err != nil {
		return nil, apperrors.MapStoreError(err, "ticket", map[string]any{"channel_id": channelID})
	}
	if !ticket.Open() {
		return nil, apperrors.NewConflict("ticket is closed", map[string]any{"ticket_id": ticket.ID})
	}
	if actorID == ticket.RequesterID {
		return ticket, nil
	}
	if ticket.ClaimedBy != nil && actorID == *ticket.ClaimedBy {
		return ticket, nil
	}
	hasRole, err := s.tiers.HasTrustRole(ctx, actorID)
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("resolve tier: %w", err))
	}
	if !hasRole {
		return nil, apperrors.NewForbidden("no permission to manage ticket participants", nil)
	}
	return ticket, nil
}

// GetByChannel resolves a ticket by its channel binding.
func (s *LifecycleService) GetByChannel(ctx context.Context, channelID int64) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByChannel(ctx, channelID)
	if err != nil {
		return nil, apperrors.MapStoreError(err, "ticket", map[string]any{"channel_id": channelID})
	}
	return ticket, nil
}

// ListOpen returns open tickets of a kind, newest first.
func (s *LifecycleService) ListOpen(ctx context.Context, kind domain.TicketKind) ([]domain.Ticket, error) {
	if !domain.ValidKind(kind) {
		return nil, apperrors.NewValidationError("unknown ticket kind", map[string]any{"kind": kind})
	}
	tickets, err := s.tickets.ListOpen(ctx, kind)
	if err != nil {
		return nil, apperrors.NewStorageUnavailable(err)
	}
	return tickets, nil
}

// ListAudit returns the ordered audit trail for a ticket.
func (s *LifecycleService) ListAudit(ctx context.Context, ticketID int64) ([]domain.AuditEntry, error) {
	if _, err := s.tickets.GetByID(ctx, ticketID); err != nil {
		return nil, apperrors.MapStoreError(err, "ticket", map[string]any{"ticket_id": ticketID})
	}
	entries, err := s.audit.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.NewStorageUnavailable(err)
	}
	return entries, nil
}

func (s *LifecycleService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
