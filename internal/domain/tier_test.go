package domain

import "testing"

func TestTierOrderIsStrict(t *testing.T) {
	for i := 1; i < len(AllTiers); i++ {
		lower, higher := AllTiers[i-1], AllTiers[i]
		if lower.Rank() >= higher.Rank() {
			t.Fatalf("expected %s to rank below %s", lower, higher)
		}
	}
}

func TestTierMeets(t *testing.T) {
	cases := []struct {
		actor    Tier
		required Tier
		want     bool
	}{
		{TierTrial, TierTrial, true},
		{TierTrial, TierMiddleman, false},
		{TierPro, TierMiddleman, true},
		{TierOwner, TierHead, true},
		{TierHead, TierOwner, false},
		{Tier("bogus"), TierTrial, false},
	}
	for _, tc := range cases {
		if got := tc.actor.Meets(tc.required); got != tc.want {
			t.Errorf("%s meets %s: got %v, want %v", tc.actor, tc.required, got, tc.want)
		}
	}
}

func TestHighestTier(t *testing.T) {
	tier, ok := HighestTier([]Tier{TierTrial, TierHead, TierMiddleman})
	if !ok || tier != TierHead {
		t.Fatalf("got %s ok=%v, want head", tier, ok)
	}

	if _, ok := HighestTier(nil); ok {
		t.Fatal("empty set should not resolve a tier")
	}
	if _, ok := HighestTier([]Tier{Tier("mystery")}); ok {
		t.Fatal("unknown tiers should not resolve")
	}
}

func TestTierLabelsCoverAllTiers(t *testing.T) {
	for _, tier := range AllTiers {
		if tier.Label() == "" {
			t.Errorf("tier %s missing label", tier)
		}
		if tier.Limit() == "" {
			t.Errorf("tier %s missing limit", tier)
		}
	}
}

func TestAuditParticipantActions(t *testing.T) {
	if got := AuditUserAdded(42); got != "user_added:42" {
		t.Fatalf("got %s", got)
	}
	if got := AuditUserRemoved(7); got != "user_removed:7" {
		t.Fatalf("got %s", got)
	}
}

func TestValidKind(t *testing.T) {
	if !ValidKind(KindTrade) || !ValidKind(KindMatch) {
		t.Fatal("known kinds rejected")
	}
	if ValidKind(TicketKind("OTHER")) {
		t.Fatal("unknown kind accepted")
	}
}
