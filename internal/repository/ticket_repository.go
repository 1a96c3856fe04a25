package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/middleman-engine/internal/domain"
)

// postgres unique_violation SQLSTATE
const uniqueViolation = "23505"

// TicketCreateParams captures the fields assigned at creation time.
type TicketCreateParams struct {
	Kind         domain.TicketKind
	RequesterID  int64
	Counterparty string
	Payload      domain.TicketPayload
	Tier         domain.Tier
}

// TicketRepository encapsulates ticket persistence. It is a dumb store:
// "only claim if unclaimed" is the claim coordinator's job, not enforced
// here.
type TicketRepository interface {
	Create(ctx context.Context, params TicketCreateParams) (*domain.Ticket, error)
	BindChannel(ctx context.Context, ticketID, channelID int64) error
	DeleteUnbound(ctx context.Context, ticketID int64) error
	GetByID(ctx context.Context, ticketID int64) (*domain.Ticket, error)
	GetByChannel(ctx context.Context, channelID int64) (*domain.Ticket, error)
	SetClaimant(ctx context.Context, channelID, actorID int64) error
	ClearClaimant(ctx context.Context, channelID int64) error
	Close(ctx context.Context, channelID int64) error
	HasOpenDuplicate(ctx context.Context, requesterID int64, counterparty string, tier domain.Tier) (bool, error)
	ListOpen(ctx context.Context, kind domain.TicketKind) ([]domain.Ticket, error)
	CountAll(ctx context.Context, kind domain.TicketKind) (int64, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, kind, channel_id, requester_id, counterparty,
               giving, receiving, can_join_links, match_type,
               tier, claimed_by, status, created_at, closed_at`

func (r *ticketRepository) Create(ctx context.Context, params TicketCreateParams) (*domain.Ticket, error) {
	const query = `
        INSERT INTO tickets (kind, requester_id, counterparty, giving, receiving, can_join_links, match_type, tier)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, status, created_at`
	ticket := &domain.Ticket{
		Kind:         params.Kind,
		RequesterID:  params.RequesterID,
		Counterparty: params.Counterparty,
		Payload:      params.Payload,
		Tier:         params.Tier,
	}
	err := r.pool.QueryRow(ctx, query,
		params.Kind,
		params.RequesterID,
		params.Counterparty,
		params.Payload.Giving,
		params.Payload.Receiving,
		params.Payload.CanJoinLinks,
		params.Payload.MatchType,
		params.Tier,
	).Scan(&ticket.ID, &ticket.Status, &ticket.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == "idx_tickets_open_dup" {
			return nil, ErrDuplicateOpenTicket
		}
		return nil, err
	}
	return ticket, nil
}

func (r *ticketRepository) BindChannel(ctx context.Context, ticketID, channelID int64) error {
	const query = `UPDATE tickets SET channel_id=$1 WHERE id=$2 AND channel_id IS NULL`
	cmd, err := r.pool.Exec(ctx, query, channelID, ticketID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		// Either the ticket is missing or the channel is already bound;
		// distinguish so the caller can surface the right failure.
		var bound *int64
		if err := r.pool.QueryRow(ctx, `SELECT channel_id FROM tickets WHERE id=$1`, ticketID).Scan(&bound); err != nil {
			return err
		}
		return ErrChannelBound
	}
	return nil
}

// DeleteUnbound removes a ticket record that never got a channel. Used only
// to roll back creation after provisioning failure; bound tickets are never
// deleted.
func (r *ticketRepository) DeleteUnbound(ctx context.Context, ticketID int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM tickets WHERE id=$1 AND channel_id IS NULL`, ticketID)
	return err
}

func (r *ticketRepository) GetByID(ctx context.Context, ticketID int64) (*domain.Ticket, error) {
	return r.fetchSingle(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id=$1`, ticketID)
}

func (r *ticketRepository) GetByChannel(ctx context.Context, channelID int64) (*domain.Ticket, error) {
	return r.fetchSingle(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE channel_id=$1`, channelID)
}

func (r *ticketRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&ticket.ID,
		&ticket.Kind,
		&ticket.ChannelID,
		&ticket.RequesterID,
		&ticket.Counterparty,
		&ticket.Payload.Giving,
		&ticket.Payload.Receiving,
		&ticket.Payload.CanJoinLinks,
		&ticket.Payload.MatchType,
		&ticket.Tier,
		&ticket.ClaimedBy,
		&ticket.Status,
		&ticket.CreatedAt,
		&ticket.ClosedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) SetClaimant(ctx context.Context, channelID, actorID int64) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE tickets SET claimed_by=$1 WHERE channel_id=$2`, actorID, channelID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) ClearClaimant(ctx context.Context, channelID int64) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE tickets SET claimed_by=NULL WHERE channel_id=$1`, channelID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Close marks the ticket closed. Idempotent: a second close matches no open
// row and leaves the closure timestamp untouched.
func (r *ticketRepository) Close(ctx context.Context, channelID int64) error {
	const query = `UPDATE tickets SET status=$1, closed_at=NOW() WHERE channel_id=$2 AND status=$3`
	cmd, err := r.pool.Exec(ctx, query, domain.TicketStatusClosed, channelID, domain.TicketStatusOpen)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		var exists bool
		if err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM tickets WHERE channel_id=$1)`, channelID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return pgx.ErrNoRows
		}
	}
	return nil
}

// HasOpenDuplicate is the duplicate guard: exact match on requester,
// counterparty string as typed, and tier, over open tickets only.
func (r *ticketRepository) HasOpenDuplicate(ctx context.Context, requesterID int64, counterparty string, tier domain.Tier) (bool, error) {
	const query = `
        SELECT EXISTS(
            SELECT 1 FROM tickets
            WHERE requester_id=$1 AND counterparty=$2 AND tier=$3 AND status=$4
        )`
	var exists bool
	err := r.pool.QueryRow(ctx, query, requesterID, counterparty, tier, domain.TicketStatusOpen).Scan(&exists)
	return exists, err
}

func (r *ticketRepository) ListOpen(ctx context.Context, kind domain.TicketKind) ([]domain.Ticket, error) {
	const query = `SELECT ` + ticketColumns + `
             FROM tickets WHERE kind=$1 AND status=$2 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, kind, domain.TicketStatusOpen)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) CountAll(ctx context.Context, kind domain.TicketKind) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tickets WHERE kind=$1`, kind).Scan(&count)
	return count, err
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.Kind,
			&ticket.ChannelID,
			&ticket.RequesterID,
			&ticket.Counterparty,
			&ticket.Payload.Giving,
			&ticket.Payload.Receiving,
			&ticket.Payload.CanJoinLinks,
			&ticket.Payload.MatchType,
			&ticket.Tier,
			&ticket.ClaimedBy,
			&ticket.Status,
			&ticket.CreatedAt,
			&ticket.ClosedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
