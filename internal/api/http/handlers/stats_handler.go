package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/middleman-engine/internal/api/dto"
	"github.com/spec-kit/middleman-engine/internal/service"
	apperrors "github.com/spec-kit/middleman-engine/pkg/util"
)

// StatsHandler exposes ticket volume and middleman leaderboards.
type StatsHandler struct {
	stats *service.StatsService
}

// NewStatsHandler constructs handler.
func NewStatsHandler(stats *service.StatsService) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// Overview GET /stats/overview.
func (h *StatsHandler) Overview(c *fiber.Ctx) error {
	overview, err := h.stats.Overview(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.OverviewResponse{
		Trade: kindCounts(overview.Trade),
		Match: kindCounts(overview.Match),
	}})
}

// Middleman GET /stats/middlemen/:id.
func (h *StatsHandler) Middleman(c *fiber.Ctx) error {
	middlemanID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || middlemanID <= 0 {
		return apperrors.NewValidationError("invalid middleman id", nil)
	}
	report, err := h.stats.MiddlemanReport(c.UserContext(), middlemanID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.MiddlemanStatsResponse{
		MiddlemanID: report.Stats.MiddlemanID,
		Trade:       report.Stats.Trade,
		Match:       report.Stats.Match,
		Total:       report.Stats.Total,
		Rank:        report.Rank,
	}})
}

// Rankings GET /stats/rankings?limit=10.
func (h *StatsHandler) Rankings(c *fiber.Ctx) error {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return apperrors.NewValidationError("invalid limit", nil)
		}
		limit = parsed
	}
	rankings, err := h.stats.Rankings(c.UserContext(), limit)
	if err != nil {
		return err
	}
	items := make([]dto.MiddlemanStatsResponse, 0, len(rankings))
	for i, entry := range rankings {
		items = append(items, dto.MiddlemanStatsResponse{
			MiddlemanID: entry.MiddlemanID,
			Trade:       entry.Trade,
			Match:       entry.Match,
			Total:       entry.Total,
			Rank:        i + 1,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

func kindCounts(counts service.KindCounts) dto.KindCountsResponse {
	return dto.KindCountsResponse{Open: counts.Open, Total: counts.Total, Closed: counts.Closed}
}
