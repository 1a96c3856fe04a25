package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/middleman-engine/internal/api/http"
	"github.com/spec-kit/middleman-engine/internal/api/http/handlers"
	"github.com/spec-kit/middleman-engine/internal/auth"
	"github.com/spec-kit/middleman-engine/internal/cache"
	"github.com/spec-kit/middleman-engine/internal/config"
	"github.com/spec-kit/middleman-engine/internal/events"
	"github.com/spec-kit/middleman-engine/internal/observability"
	"github.com/spec-kit/middleman-engine/internal/persistence"
	"github.com/spec-kit/middleman-engine/internal/platform"
	"github.com/spec-kit/middleman-engine/internal/repository"
	"github.com/spec-kit/middleman-engine/internal/service"
	"github.com/spec-kit/middleman-engine/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	ticketRepo := repository.NewTicketRepository(pool)
	confirmationRepo := repository.NewConfirmationRepository(pool)
	auditRepo := repository.NewAuditRepository(pool)
	proofRepo := repository.NewProofRepository(pool)
	panelRepo := repository.NewPanelRepository(pool)

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	// The logging stubs stand in for the gateway-backed implementations
	// until the bot process registers real ones over its callback channel.
	provisioner := platform.NewLoggingProvisioner(logger)
	notifier := platform.NewLoggingNotifier(logger)
	authzSource := &platform.StaticAuthorization{}

	tierService := service.NewTierService(authzSource, cache.NewRedisCache(redis.Client), cfg.Roles)
	lifecycle := service.NewLifecycleService(service.LifecycleDependencies{
		TicketRepo:       ticketRepo,
		ConfirmationRepo: confirmationRepo,
		AuditRepo:        auditRepo,
		ProofRepo:        proofRepo,
		Tiers:            tierService,
		Provisioner:      provisioner,
		Dispatcher:       dispatcher,
		Metrics:          metrics,
		Logger:           logger,
	})
	defer lifecycle.Stop()

	statsService := service.NewStatsService(ticketRepo, proofRepo)
	panelService := service.NewPanelService(panelRepo)
	worker.StartNotificationWorker(notifier, cfg.Channels, dispatcher, logger)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authMiddleware := auth.NewAuthMiddleware(tokens)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(tokens, cfg.Auth),
		Tickets:        handlers.NewTicketsHandler(lifecycle),
		Stats:          handlers.NewStatsHandler(statsService),
		Panels:         handlers.NewPanelsHandler(panelService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
