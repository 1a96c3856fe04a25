package service

import (
	"context"
	"strconv"
	"time"

	"github.com/spec-kit/middleman-engine/internal/cache"
	"github.com/spec-kit/middleman-engine/internal/config"
	"github.com/spec-kit/middleman-engine/internal/domain"
	"github.com/spec-kit/middleman-engine/internal/platform"
)

const tierCacheMiss = "none"

// TierService resolves an actor's trust tier from the platform roles they
// hold. Lookups are cached with a short TTL as a read optimization only;
// the claim coordinator's critical-section re-read is what prevents
// double claims, never this cache.
type TierService struct {
	source    platform.AuthorizationSource
	cache     cache.Cache
	tierRoles map[domain.Tier]int64
	ttl       time.Duration
}

// NewTierService constructs the service.
func NewTierService(source platform.AuthorizationSource, store cache.Cache, cfg config.RolesConfig) *TierService {
	return &TierService{
		source:    source,
		cache:     store,
		tierRoles: cfg.TierRoles,
		ttl:       cfg.CacheTTL(),
	}
}

// ResolveTier returns the highest-ranked tier among the actor's roles, or
// ok=false when the actor holds no recognized trust role.
func (s *TierService) ResolveTier(ctx context.Context, actorID int64) (domain.Tier, bool, error) {
	key := "tier:" + strconv.FormatInt(actorID, 10)
	if s.cache != nil {
		if val, hit, err := s.cache.Get(ctx, key); err == nil && hit {
			if val == tierCacheMiss {
				return "", false, nil
			}
			return domain.Tier(val), true, nil
		}
	}

	roles, err := s.source.RolesOf(ctx, actorID)
	if err != nil {
		return "", false, err
	}
	held := make([]domain.Tier, 0, len(s.tierRoles))
	for tier, roleID := range s.tierRoles {
		for _, role := range roles {
			if role == roleID {
				held = append(held, tier)
				break
			}
		}
	}
	tier, ok := domain.HighestTier(held)

	if s.cache != nil {
		val := tierCacheMiss
		if ok {
			val = string(tier)
		}
		_ = s.cache.Set(ctx, key, val, s.ttl)
	}
	return tier, ok, nil
}

// HasTrustRole reports whether the actor holds any recognized tier role.
func (s *TierService) HasTrustRole(ctx context.Context, actorID int64) (bool, error) {
	_, ok, err := s.ResolveTier(ctx, actorID)
	return ok, err
}

// IsAdmin queries the authorization source directly; admin status is not
// tier-derived and is not cached.
func (s *TierService) IsAdmin(ctx context.Context, actorID int64) (bool, error) {
	return s.source.IsAdmin(ctx, actorID)
}

// RoleFor returns the platform role id granting the given tier.
func (s *TierService) RoleFor(tier domain.Tier) (int64, bool) {
	id, ok := s.tierRoles[tier]
	return id, ok
}

// RolesMeeting returns the role ids of every tier meeting the required
// tier, used to grant channel visibility to eligible middlemen.
func (s *TierService) RolesMeeting(required domain.Tier) []int64 {
	var roles []int64
	for _, tier := range domain.AllTiers {
		if !tier.Meets(required) {
			continue
		}
		if id, ok := s.tierRoles[tier]; ok {
			roles = append(roles, id)
		}
	}
	return roles
}
