package service

import (
	"context"

	"github.com/spec-kit/middleman-engine/internal/domain"
	"github.com/spec-kit/middleman-engine/internal/repository"
	apperrors "github.com/spec-kit/middleman-engine/pkg/util"
)

// PanelService stores the request-panel bindings so the gateway can
// reattach interactive components after a restart. One panel per kind.
type PanelService struct {
	panels repository.PanelRepository
}

// NewPanelService constructs the service.
func NewPanelService(panels repository.PanelRepository) *PanelService {
	return &PanelService{panels: panels}
}

// Save upserts the panel binding for a kind.
func (s *PanelService) Save(ctx context.Context, kind domain.TicketKind, channelID, messageID int64) error {
	if !domain.ValidKind(kind) {
		return apperrors.NewValidationError("unknown ticket kind", map[string]any{"kind": kind})
	}
	if channelID <= 0 || messageID <= 0 {
		return apperrors.NewValidationError("channel_id and message_id required", nil)
	}
	if err := s.panels.Save(ctx, kind, channelID, messageID); err != nil {
		return apperrors.NewStorageUnavailable(err)
	}
	return nil
}

// Get returns the stored panel binding for a kind.
func (s *PanelService) Get(ctx context.Context, kind domain.TicketKind) (*domain.Panel, error) {
	if !domain.ValidKind(kind) {
		return nil, apperrors.NewValidationError("unknown ticket kind", map[string]any{"kind": kind})
	}
	panel, err := s.panels.Get(ctx, kind)
	if err != nil {
		return nil, apperrors.MapStoreError(err, "panel", map[string]any{"kind": kind})
	}
	return panel, nil
}
