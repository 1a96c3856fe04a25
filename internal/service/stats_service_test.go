package service

import (
	"context"
	"testing"

	"github.com/spec-kit/middleman-engine/internal/domain"
	"github.com/spec-kit/middleman-engine/internal/repository"
)

func newStatsFixture() (*StatsService, *fakeTicketRepo, *fakeProofRepo) {
	tickets := newFakeTicketRepo()
	proofs := &fakeProofRepo{}
	return NewStatsService(tickets, proofs), tickets, proofs
}

func TestOverviewCountsPerKind(t *testing.T) {
	svc, tickets, _ := newStatsFixture()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ticket, err := tickets.Create(ctx, repository.TicketCreateParams{
			Kind:         domain.KindTrade,
			RequesterID:  int64(100 + i),
			Counterparty: "someone",
			Tier:         domain.TierTrial,
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if err := tickets.BindChannel(ctx, ticket.ID, int64(900+i)); err != nil {
			t.Fatalf("bind: %v", err)
		}
	}
	if err := tickets.Close(ctx, 900); err != nil {
		t.Fatalf("close: %v", err)
	}

	overview, err := svc.Overview(ctx)
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if overview.Trade.Open != 2 || overview.Trade.Total != 3 || overview.Trade.Closed != 1 {
		t.Fatalf("trade counts = %+v", overview.Trade)
	}
	if overview.Match.Total != 0 {
		t.Fatalf("match counts = %+v", overview.Match)
	}
}

func TestMiddlemanReportRank(t *testing.T) {
	svc, _, proofs := newStatsFixture()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_ = proofs.Add(ctx, int64(i), domain.KindTrade, 201)
	}
	_ = proofs.Add(ctx, 10, domain.KindMatch, 202)

	report, err := svc.MiddlemanReport(ctx, 202)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if report.Stats.Total != 1 || report.Stats.Match != 1 {
		t.Fatalf("stats = %+v", report.Stats)
	}
	if report.Rank != 2 {
		t.Fatalf("rank = %d, want 2", report.Rank)
	}
}

func TestMiddlemanReportNoProofs(t *testing.T) {
	svc, _, _ := newStatsFixture()

	report, err := svc.MiddlemanReport(context.Background(), 999)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if report.Stats.Total != 0 || report.Rank != 0 {
		t.Fatalf("report = %+v, want empty", report)
	}
}

func TestRankingsRejectNegativeLimit(t *testing.T) {
	svc, _, _ := newStatsFixture()
	if _, err := svc.Rankings(context.Background(), -1); err == nil {
		t.Fatal("negative limit accepted")
	}
}
