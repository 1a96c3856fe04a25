package service

import (
	"context"
	"fmt"

	"github.com/spec-kit/middleman-engine/internal/domain"
	"github.com/spec-kit/middleman-engine/internal/repository"
	apperrors "github.com/spec-kit/middleman-engine/pkg/util"
)

// KindCounts summarizes ticket volume for one kind.
type KindCounts struct {
	Open   int
	Total  int64
	Closed int64
}

// Overview aggregates volume across both kinds.
type Overview struct {
	Trade KindCounts
	Match KindCounts
}

// MiddlemanReport is a middleman's completed-ticket stats plus their
// position in the rankings, 1-based. Rank is 0 when the middleman has no
// recorded proofs.
type MiddlemanReport struct {
	Stats repository.MiddlemanStats
	Rank  int
}

// StatsService derives aggregate counts from the ticket store and the
// proof log.
type StatsService struct {
	tickets repository.TicketRepository
	proofs  repository.ProofRepository
}

// NewStatsService constructs the service.
func NewStatsService(tickets repository.TicketRepository, proofs repository.ProofRepository) *StatsService {
	return &StatsService{tickets: tickets, proofs: proofs}
}

// Overview returns open/total/closed counts per kind.
func (s *StatsService) Overview(ctx context.Context) (*Overview, error) {
	var overview Overview
	for _, kind := range []domain.TicketKind{domain.KindTrade, domain.KindMatch} {
		open, err := s.tickets.ListOpen(ctx, kind)
		if err != nil {
			return nil, apperrors.NewStorageUnavailable(err)
		}
		total, err := s.tickets.CountAll(ctx, kind)
		if err != nil {
			return nil, apperrors.NewStorageUnavailable(err)
		}
		counts := KindCounts{Open: len(open), Total: total, Closed: total - int64(len(open))}
		if kind == domain.KindTrade {
			overview.Trade = counts
		} else {
			overview.Match = counts
		}
	}
	return &overview, nil
}

// MiddlemanReport returns one middleman's proof counts and ranking.
func (s *StatsService) MiddlemanReport(ctx context.Context, middlemanID int64) (*MiddlemanReport, error) {
	stats, err := s.proofs.StatsFor(ctx, middlemanID)
	if err != nil {
		return nil, apperrors.NewStorageUnavailable(err)
	}
	report := &MiddlemanReport{Stats: *stats}
	if stats.Total == 0 {
		return report, nil
	}

	rankings, err := s.proofs.Rankings(ctx, 0)
	if err != nil {
		return nil, apperrors.NewStorageUnavailable(err)
	}
	for i, entry := range rankings {
		if entry.MiddlemanID == middlemanID {
			report.Rank = i + 1
			break
		}
	}
	return report, nil
}

// Rankings returns the top middlemen by completed tickets.
func (s *StatsService) Rankings(ctx context.Context, limit int) ([]repository.MiddlemanStats, error) {
	if limit < 0 {
		return nil, apperrors.NewValidationError("limit must not be negative", map[string]any{"limit": limit})
	}
	rankings, err := s.proofs.Rankings(ctx, limit)
	if err != nil {
		return nil, apperrors.NewStorageUnavailable(fmt.Errorf("load rankings: %w", err))
	}
	return rankings, nil
}
