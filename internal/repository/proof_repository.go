package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/middleman-engine/internal/domain"
)

// MiddlemanStats aggregates completed-ticket counts for one middleman.
type MiddlemanStats struct {
	MiddlemanID int64
	Trade       int64
	Match       int64
	Total       int64
}

// ProofRepository stores trade-completion attestations and derives
// middleman statistics from them.
type ProofRepository interface {
	Add(ctx context.Context, ticketID int64, kind domain.TicketKind, middlemanID int64) error
	StatsFor(ctx context.Context, middlemanID int64) (*MiddlemanStats, error)
	Rankings(ctx context.Context, limit int) ([]MiddlemanStats, error)
}

type proofRepository struct {
	pool *pgxpool.Pool
}

// NewProofRepository instantiates repository.
func NewProofRepository(pool *pgxpool.Pool) ProofRepository {
	return &proofRepository{pool: pool}
}

func (r *proofRepository) Add(ctx context.Context, ticketID int64, kind domain.TicketKind, middlemanID int64) error {
	const query = `
        INSERT INTO proofs (ticket_id, kind, middleman_id)
        VALUES ($1,$2,$3)`
	_, err := r.pool.Exec(ctx, query, ticketID, kind, middlemanID)
	return err
}

func (r *proofRepository) StatsFor(ctx context.Context, middlemanID int64) (*MiddlemanStats, error) {
	const query = `
        SELECT
            COUNT(*) FILTER (WHERE kind=$2),
            COUNT(*) FILTER (WHERE kind=$3),
            COUNT(*)
        FROM proofs WHERE middleman_id=$1`
	stats := &MiddlemanStats{MiddlemanID: middlemanID}
	err := r.pool.QueryRow(ctx, query, middlemanID, domain.KindTrade, domain.KindMatch).
		Scan(&stats.Trade, &stats.Match, &stats.Total)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *proofRepository) Rankings(ctx context.Context, limit int) ([]MiddlemanStats, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `
        SELECT middleman_id,
               COUNT(*) FILTER (WHERE kind=$1),
               COUNT(*) FILTER (WHERE kind=$2),
               COUNT(*)
        FROM proofs
        GROUP BY middleman_id
        ORDER BY COUNT(*) DESC, middleman_id
        LIMIT $3`
	rows, err := r.pool.Query(ctx, query, domain.KindTrade, domain.KindMatch, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []MiddlemanStats
	for rows.Next() {
		var stats MiddlemanStats
		if err := rows.Scan(&stats.MiddlemanID, &stats.Trade, &stats.Match, &stats.Total); err != nil {
			return nil, err
		}
		result = append(result, stats)
	}
	return result, rows.Err()
}
