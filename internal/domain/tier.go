package domain

// Tier is an ordered trust level gating who may claim a ticket.
type Tier string

const (
	TierTrial     Tier = "trial"
	TierMiddleman Tier = "middleman"
	TierPro       Tier = "pro"
	TierHead      Tier = "head"
	TierOwner     Tier = "owner"
)

// tierRanks defines the strict total order. Comparisons use rank only.
var tierRanks = map[Tier]int{
	TierTrial:     1,
	TierMiddleman: 2,
	TierPro:       3,
	TierHead:      4,
	TierOwner:     5,
}

var tierLabels = map[Tier]string{
	TierTrial:     "<100m/s",
	TierMiddleman: "100-250m/s",
	TierPro:       "250-500m/s",
	TierHead:      "500+m/s",
	TierOwner:     "Owner",
}

var tierLimits = map[Tier]string{
	TierTrial:     "Trades under 100M",
	TierMiddleman: "Trades 100M-250M",
	TierPro:       "Trades 250M-500M",
	TierHead:      "Trades over 500M",
	TierOwner:     "Owner to MM (fee)",
}

// AllTiers lists tiers in ascending rank order.
var AllTiers = []Tier{TierTrial, TierMiddleman, TierPro, TierHead, TierOwner}

// Rank returns the numeric rank of a tier, or 0 for an unknown tier.
func (t Tier) Rank() int {
	return tierRanks[t]
}

// Valid reports whether t names a recognized tier.
func (t Tier) Valid() bool {
	_, ok := tierRanks[t]
	return ok
}

// Label returns the human-readable trade-size label.
func (t Tier) Label() string {
	return tierLabels[t]
}

// Limit returns the trade-size limit description.
func (t Tier) Limit() string {
	return tierLimits[t]
}

// Meets reports whether an actor at tier t may act on a ticket requiring
// the given tier.
func (t Tier) Meets(required Tier) bool {
	return t.Rank() >= required.Rank()
}

// HighestTier returns the greatest-ranked tier in the set, or "" and false
// when the set holds no recognized tier.
func HighestTier(tiers []Tier) (Tier, bool) {
	var best Tier
	rank := 0
	for _, t := range tiers {
		if r := t.Rank(); r > rank {
			rank = r
			best = t
		}
	}
	return best, rank > 0
}
