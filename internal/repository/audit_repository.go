package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/middleman-engine/internal/domain"
)

// AuditRepository is the append-only transition log. Rows are never
// updated or deleted.
type AuditRepository interface {
	Append(ctx context.Context, ticketID int64, kind domain.TicketKind, action domain.AuditAction, actorID int64) error
	ListByTicket(ctx context.Context, ticketID int64) ([]domain.AuditEntry, error)
}

type auditRepository struct {
	pool *pgxpool.Pool
}

// NewAuditRepository instantiates repository.
func NewAuditRepository(pool *pgxpool.Pool) AuditRepository {
	return &auditRepository{pool: pool}
}

func (r *auditRepository) Append(ctx context.Context, ticketID int64, kind domain.TicketKind, action domain.AuditAction, actorID int64) error {
	const query = `
        INSERT INTO ticket_audit (ticket_id, kind, action, actor_id)
        VALUES ($1,$2,$3,$4)`
	_, err := r.pool.Exec(ctx, query, ticketID, kind, action, actorID)
	return err
}

func (r *auditRepository) ListByTicket(ctx context.Context, ticketID int64) ([]domain.AuditEntry, error) {
	const query = `
        SELECT id, ticket_id, kind, action, actor_id, created_at
        FROM ticket_audit WHERE ticket_id=$1 ORDER BY id`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.AuditEntry
	for rows.Next() {
		var entry domain.AuditEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.TicketID,
			&entry.Kind,
			&entry.Action,
			&entry.ActorID,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
