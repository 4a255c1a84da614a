package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/davisgreg1/valet-time-keeping/internal/api/http"
	"github.com/davisgreg1/valet-time-keeping/internal/api/http/handlers"
	"github.com/davisgreg1/valet-time-keeping/internal/authz"
	"github.com/davisgreg1/valet-time-keeping/internal/config"
	"github.com/davisgreg1/valet-time-keeping/internal/docstore"
	"github.com/davisgreg1/valet-time-keeping/internal/events"
	"github.com/davisgreg1/valet-time-keeping/internal/identity"
	"github.com/davisgreg1/valet-time-keeping/internal/observability"
	"github.com/davisgreg1/valet-time-keeping/internal/persistence"
	"github.com/davisgreg1/valet-time-keeping/internal/repository"
	"github.com/davisgreg1/valet-time-keeping/internal/service"
	"github.com/davisgreg1/valet-time-keeping/internal/worker"
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

	// cancelling this context terminates every live session monitor
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

	var store docstore.Store
	var users *identity.Provider
	if pool != nil {
		store = docstore.NewPostgresStore(pool)
		users = identity.NewProvider(cfg.Auth, identity.NewPgxUserStore(pool), redis.Client, logger)
	} else {
		store = docstore.NewMemoryStore()
		users = identity.NewProvider(cfg.Auth, identity.NewMemUserStore(), redis.Client, logger)
	}

	adminRepo := repository.NewAdminRepository(store)
	valetRepo := repository.NewValetRepository(store)
	clockInRepo := repository.NewClockInRepository(store)

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	resolver := authz.NewResolver(adminRepo, valetRepo)
	terminator := authz.NewTerminator(users, dispatcher, metrics, logger)
	guard := authz.NewGuard(resolver, terminator, logger)
	monitor := authz.NewMonitor(valetRepo, terminator, cfg.Monitor.PollInterval(), logger)
	registry := authz.NewRegistry()

	controller := authz.NewController(authz.ControllerDeps{
		Credentials: users,
		Resolver:    resolver,
		Valets:      valetRepo,
		Registry:    registry,
		Terminator:  terminator,
		Monitor:     monitor,
		Logger:      logger,
		BaseCtx:     ctx,
	})

	valetService := service.NewValetService(service.ValetDependencies{
		ValetRepo:   valetRepo,
		AdminRepo:   adminRepo,
		ClockInRepo: clockInRepo,
		Provisioner: users,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	clockInService := service.NewClockInService(clockInRepo, dispatcher, logger)
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := authz.NewAuthMiddleware(users.TokenManager(), registry, users, logger)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(controller, guard, valetService, logger),
		Valets:         handlers.NewValetsHandler(valetService),
		ClockIns:       handlers.NewClockInsHandler(clockInService),
		AuthMiddleware: authMiddleware,
		Guard:          guard,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
