package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/ticketops/helpdesk-service/internal/accesscontrol"
	httptransport "github.com/ticketops/helpdesk-service/internal/api/http"
	"github.com/ticketops/helpdesk-service/internal/api/http/handlers"
	"github.com/ticketops/helpdesk-service/internal/auth"
	"github.com/ticketops/helpdesk-service/internal/config"
	"github.com/ticketops/helpdesk-service/internal/events"
	"github.com/ticketops/helpdesk-service/internal/identity"
	"github.com/ticketops/helpdesk-service/internal/lifecycle"
	"github.com/ticketops/helpdesk-service/internal/notify"
	"github.com/ticketops/helpdesk-service/internal/observability"
	"github.com/ticketops/helpdesk-service/internal/store"
	"github.com/ticketops/helpdesk-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.App.Name, cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	backing, err := store.Open(ctx, cfg.Store, logger)
	if err != nil {
		logger.Fatal("failed to open store", zap.Error(err))
	}
	defer backing.Close()

	identityService := identity.NewService(backing, cfg.Auth.BcryptCost, logger)
	if err := identityService.EnsureDefaults(ctx); err != nil {
		logger.Fatal("failed to seed default users", zap.Error(err))
	}

	dispatcher := events.NewDispatcher()
	notifier := notify.NewNotifier(dispatcher, logger)
	notifier.RegisterHandlers()

	engine := lifecycle.NewEngine(lifecycle.Dependencies{
		TicketStore: backing,
		UserStore:   backing,
		Clock:       lifecycle.SystemClock(),
		Dispatcher:  dispatcher,
	})
	controller := accesscontrol.NewController(engine)

	if cfg.SLA.MonitorEnabled {
		monitor := worker.NewSLAMonitor(engine, dispatcher, logger, cfg.SLA.MonitorSchedule)
		if err := monitor.Start(ctx); err != nil {
			logger.Fatal("failed to start sla monitor", zap.Error(err))
		}
		defer monitor.Stop()
	}

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authMiddleware := auth.NewMiddleware(tokens, identityService)
	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, backing),
		Auth:           handlers.NewAuthHandler(identityService, tokens),
		Tickets:        handlers.NewTicketsHandler(controller),
		Users:          handlers.NewUsersHandler(identityService),
		Reports:        handlers.NewReportsHandler(controller),
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
