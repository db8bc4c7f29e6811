package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	httptransport "github.com/spec-kit/customer-data-service/internal/api/http"
	"github.com/spec-kit/customer-data-service/internal/api/http/handlers"
	"github.com/spec-kit/customer-data-service/internal/auth"
	"github.com/spec-kit/customer-data-service/internal/config"
	"github.com/spec-kit/customer-data-service/internal/events"
	"github.com/spec-kit/customer-data-service/internal/observability"
	"github.com/spec-kit/customer-data-service/internal/persistence"
	"github.com/spec-kit/customer-data-service/internal/repository"
	"github.com/spec-kit/customer-data-service/internal/service"
	"github.com/spec-kit/customer-data-service/internal/worker"
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

	db, err := persistence.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.ResetOnStart {
		if err := persistence.ResetSchema(ctx, db, time.Now(), logger); err != nil {
			logger.Fatal("failed to reset schema", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	dispatcher := events.NewInMemoryDispatcher()
	notifications := service.NewNotificationService(redis, logger, cfg.Redis)
	notificationWorker := worker.NewNotificationWorker(notifications, logger, 0)
	notificationWorker.Start(ctx, dispatcher)

	metrics := observability.NewMetrics()
	dataService := service.NewDataAccessService(service.DataAccessDependencies{
		AccountRepo:   repository.NewAccountRepository(db),
		TicketRepo:    repository.NewTicketRepository(db),
		Dispatcher:    dispatcher,
		Metrics:       metrics,
		Logger:        logger,
		MaxConcurrent: cfg.Dispatch.MaxConcurrent,
	})

	callAuth := auth.NewCallAuth(cfg.Auth)
	if callAuth.Enabled() {
		logger.Info("call endpoint requires credentials")
	} else {
		logger.Warn("call endpoint is unauthenticated")
	}

	deps := []handlers.Dependency{{Name: "database", Pinger: db}}
	if redis.Enabled() {
		deps = append(deps, handlers.Dependency{Name: "redis", Pinger: redis})
	}

	app := httptransport.NewApp(cfg.App, logger, metrics)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:   handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, deps...),
		Tools:    handlers.NewToolsHandler(dataService, service.Catalog()),
		Metrics:  metrics.Handler(),
		CallAuth: callAuth,
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()), zap.String("db_driver", cfg.Database.Driver))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	cancel()
	notificationWorker.Stop()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
