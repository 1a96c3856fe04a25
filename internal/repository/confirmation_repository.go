package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/middleman-engine/internal/domain"
)

// ConfirmationRepository accumulates distinct-participant confirmations.
type ConfirmationRepository interface {
	// Add records a confirmation. Inserted is false when the same actor
	// already confirmed this ticket; count is the distinct-confirmer total
	// after the call either way.
	Add(ctx context.Context, ticketID int64, kind domain.TicketKind, actorID int64) (inserted bool, count int, err error)
	Count(ctx context.Context, ticketID int64, kind domain.TicketKind) (int, error)
}

type confirmationRepository struct {
	pool *pgxpool.Pool
}

// NewConfirmationRepository instantiates repository.
func NewConfirmationRepository(pool *pgxpool.Pool) ConfirmationRepository {
	return &confirmationRepository{pool: pool}
}

func (r *confirmationRepository) Add(ctx context.Context, ticketID int64, kind domain.TicketKind, actorID int64) (bool, int, error) {
	const query = `
        INSERT INTO confirmations (ticket_id, kind, actor_id)
        VALUES ($1,$2,$3)
        ON CONFLICT (ticket_id, kind, actor_id) DO NOTHING`
	cmd, err := r.pool.Exec(ctx, query, ticketID, kind, actorID)
	if err != nil {
		return false, 0, err
	}
	count, err := r.Count(ctx, ticketID, kind)
	if err != nil {
		return false, 0, err
	}
	return cmd.RowsAffected() > 0, count, nil
}

func (r *confirmationRepository) Count(ctx context.Context, ticketID int64, kind domain.TicketKind) (int, error) {
	const query = `
        SELECT COUNT(DISTINCT actor_id) FROM confirmations
        WHERE ticket_id=$1 AND kind=$2`
	var count int
	err := r.pool.QueryRow(ctx, query, ticketID, kind).Scan(&count)
	return count, err
}
