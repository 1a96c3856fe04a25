package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/middleman-engine/internal/domain"
)

// PanelRepository persists the request-panel message bindings the gateway
// restores on startup.
type PanelRepository interface {
	Save(ctx context.Context, kind domain.TicketKind, channelID, messageID int64) error
	Get(ctx context.Context, kind domain.TicketKind) (*domain.Panel, error)
}

type panelRepository struct {
	pool *pgxpool.Pool
}

// NewPanelRepository instantiates repository.
func NewPanelRepository(pool *pgxpool.Pool) PanelRepository {
	return &panelRepository{pool: pool}
}

func (r *panelRepository) Save(ctx context.Context, kind domain.TicketKind, channelID, messageID int64) error {
	const query = `
        INSERT INTO panels (kind, channel_id, message_id, updated_at)
        VALUES ($1,$2,$3,NOW())
        ON CONFLICT (kind) DO UPDATE
            SET channel_id=EXCLUDED.channel_id,
                message_id=EXCLUDED.message_id,
                updated_at=NOW()`
	_, err := r.pool.Exec(ctx, query, kind, channelID, messageID)
	return err
}

func (r *panelRepository) Get(ctx context.Context, kind domain.TicketKind) (*domain.Panel, error) {
	const query = `SELECT kind, channel_id, message_id, updated_at FROM panels WHERE kind=$1`
	var panel domain.Panel
	if err := r.pool.QueryRow(ctx, query, kind).Scan(
		&panel.Kind,
		&panel.ChannelID,
		&panel.MessageID,
		&panel.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &panel, nil
}
