package dto

// KindCountsResponse summarizes ticket volume for one kind.
type KindCountsResponse struct {
	Open   int   `json:"open"`
	Total  int64 `json:"total"`
	Closed int64 `json:"closed"`
}

// OverviewResponse aggregates counts across kinds.
type OverviewResponse struct {
	Trade KindCountsResponse `json:"trade"`
	Match KindCountsResponse `json:"match"`
}

// MiddlemanStatsResponse reports one middleman's completed tickets.
type MiddlemanStatsResponse struct {
	MiddlemanID int64 `json:"middleman_id"`
	Trade       int64 `json:"trade"`
	Match       int64 `json:"match"`
	Total       int64 `json:"total"`
	Rank        int   `json:"rank,omitempty"`
}
