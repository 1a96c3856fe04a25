package service

import (
	"context"
	"sync"
	"testing"

	"github.com/spec-kit/middleman-engine/internal/cache"
	"github.com/spec-kit/middleman-engine/internal/config"
	"github.com/spec-kit/middleman-engine/internal/domain"
)

type countingSource struct {
	mu    sync.Mutex
	roles map[int64][]int64
	calls int
}

func (s *countingSource) RolesOf(ctx context.Context, actorID int64) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.roles[actorID], nil
}

func (s *countingSource) IsAdmin(ctx context.Context, actorID int64) (bool, error) {
	return false, nil
}

func newTierFixture(roles map[int64][]int64) (*TierService, *countingSource) {
	source := &countingSource{roles: roles}
	svc := NewTierService(source, cache.NewMemoryCache(), config.RolesConfig{
		TierRoles: map[domain.Tier]int64{
			domain.TierTrial:     trialRole,
			domain.TierMiddleman: middlemanRole,
			domain.TierPro:       proRole,
			domain.TierHead:      headRole,
			domain.TierOwner:     ownerRole,
		},
	})
	return svc, source
}

func TestResolveTierPicksHighest(t *testing.T) {
	svc, _ := newTierFixture(map[int64][]int64{
		55: {trialRole, headRole, middlemanRole},
	})

	tier, ok, err := svc.ResolveTier(context.Background(), 55)
	if err != nil || !ok {
		t.Fatalf("resolve: tier=%s ok=%v err=%v", tier, ok, err)
	}
	if tier != domain.TierHead {
		t.Fatalf("tier = %s, want head", tier)
	}
}

func TestResolveTierCachesLookups(t *testing.T) {
	svc, source := newTierFixture(map[int64][]int64{
		55: {middlemanRole},
	})

	for i := 0; i < 5; i++ {
		if _, ok, err := svc.ResolveTier(context.Background(), 55); err != nil || !ok {
			t.Fatalf("resolve #%d: ok=%v err=%v", i, ok, err)
		}
	}
	if source.calls != 1 {
		t.Fatalf("source calls = %d, want 1 (cached)", source.calls)
	}
}

func TestResolveTierCachesNegativeResult(t *testing.T) {
	svc, source := newTierFixture(nil)

	for i := 0; i < 3; i++ {
		if _, ok, err := svc.ResolveTier(context.Background(), 77); err != nil || ok {
			t.Fatalf("resolve #%d: ok=%v err=%v", i, ok, err)
		}
	}
	if source.calls != 1 {
		t.Fatalf("source calls = %d, want 1 (negative result cached)", source.calls)
	}
}

func TestRolesMeeting(t *testing.T) {
	svc, _ := newTierFixture(nil)

	roles := svc.RolesMeeting(domain.TierPro)
	want := []int64{proRole, headRole, ownerRole}
	if len(roles) != len(want) {
		t.Fatalf("roles = %v, want %v", roles, want)
	}
	for i := range want {
		if roles[i] != want[i] {
			t.Fatalf("roles[%d] = %d, want %d", i, roles[i], want[i])
		}
	}
}
