package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/site-auth/internal/api/http"
	"github.com/spec-kit/site-auth/internal/api/http/handlers"
	"github.com/spec-kit/site-auth/internal/auth"
	"github.com/spec-kit/site-auth/internal/config"
	"github.com/spec-kit/site-auth/internal/events"
	"github.com/spec-kit/site-auth/internal/observability"
	"github.com/spec-kit/site-auth/internal/persistence"
	"github.com/spec-kit/site-auth/internal/service"
	"github.com/spec-kit/site-auth/internal/worker"
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

	stores, err := persistence.Open(ctx, *cfg, logger)
	if err != nil {
		logger.Fatal("failed to open storage", zap.Error(err))
	}
	defer stores.Close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	notifications := service.NewNotificationService(logger, cfg.Notification)
	notifyWorker := worker.NewNotificationWorker(notifications, logger, 0)
	notifyWorker.Subscribe(dispatcher)
	notifyWorker.Start(ctx)
	defer notifyWorker.Stop()

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:    stores.Users,
		SessionRepo: stores.Sessions,
		Dispatcher:  dispatcher,
		Metrics:     metrics,
		Logger:      logger,
	})
	if _, err := authService.Initialize(ctx); err != nil {
		logger.Fatal("failed to initialize auth state", zap.Error(err))
	}

	adminService := service.NewUserAdminService(stores.Users, stores.Inquiries, dispatcher, logger)
	contactService := service.NewContactService(stores.Inquiries, dispatcher, logger)
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), authService, cfg.App.LoginPath)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, httptransport.MiddlewareConfig{
		Logger:         logger,
		Metrics:        metrics,
		Timeout:        cfg.App.RequestTimeout(),
		AllowedOrigins: cfg.App.AllowedOrigins,
	})

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, stores.Postgres, stores.Redis, metrics),
		Auth:           handlers.NewAuthHandler(authService),
		Admin:          handlers.NewAdminHandler(adminService),
		Contact:        handlers.NewContactHandler(contactService),
		AuthMiddleware: authMiddleware,
		LoginLimiter:   httptransport.LoginRateLimiter(cfg.Auth.LoginRateLimit, cfg.Auth.LoginRateWindow()),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.Shutdown(); err != nil {
		logger.Warn("fiber shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
