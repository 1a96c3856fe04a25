package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/middleman-engine/internal/api/http/handlers"
	"github.com/spec-kit/middleman-engine/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Stats          *handlers.StatsHandler
	Panels         *handlers.PanelsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/token", cfg.Auth.IssueToken)

	api := app.Group("/v1", cfg.AuthMiddleware.Handle)

	api.Post("/tickets", cfg.Tickets.CreateTicket)
	api.Get("/tickets/open", cfg.Tickets.ListOpen)
	api.Get("/tickets/:id/audit", cfg.Tickets.ListAudit)

	channels := api.Group("/channels/:channel_id")
	channels.Get("/ticket", cfg.Tickets.GetTicket)
	channels.Post("/claim", cfg.Tickets.Claim)
	channels.Post("/unclaim", cfg.Tickets.Unclaim)
	channels.Post("/confirm", cfg.Tickets.Confirm)
	channels.Post("/proof", cfg.Tickets.SubmitProof)
	channels.Post("/close", cfg.Tickets.Close)
	channels.Post("/participants", cfg.Tickets.AddParticipant)
	channels.Delete("/participants", cfg.Tickets.RemoveParticipant)

	api.Get("/stats/overview", cfg.Stats.Overview)
	api.Get("/stats/middlemen/:id", cfg.Stats.Middleman)
	api.Get("/stats/rankings", cfg.Stats.Rankings)

	api.Put("/panels/:kind", cfg.Panels.Save)
	api.Get("/panels/:kind", cfg.Panels.Get)
}
