// AngelaMos | 2026
// serve.go

package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/huanhuanli370-gif/smart-cafeteria-system/internal/admin"
	"github.com/huanhuanli370-gif/smart-cafeteria-system/internal/assistant"
	"github.com/huanhuanli370-gif/smart-cafeteria-system/internal/auth"
	"github.com/huanhuanli370-gif/smart-cafeteria-system/internal/authz"
	"github.com/huanhuanli370-gif/smart-cafeteria-system/internal/config"
	"github.com/huanhuanli370-gif/smart-cafeteria-system/internal/core"
	"github.com/huanhuanli370-gif/smart-cafeteria-system/internal/health"
	"github.com/huanhuanli370-gif/smart-cafeteria-system/internal/media"
	"github.com/huanhuanli370-gif/smart-cafeteria-system/internal/menu"
	"github.com/huanhuanli370-gif/smart-cafeteria-system/internal/metrics"
	"github.com/huanhuanli370-gif/smart-cafeteria-system/internal/middleware"
	"github.com/huanhuanli370-gif/smart-cafeteria-system/internal/order"
	"github.com/huanhuanli370-gif/smart-cafeteria-system/internal/realtime"
	"github.com/huanhuanli370-gif/smart-cafeteria-system/internal/server"
	"github.com/huanhuanli370-gif/smart-cafeteria-system/internal/statistics"
	"github.com/huanhuanli370-gif/smart-cafeteria-system/internal/user"
)

const (
	drainDelay = 5 * time.Second
)

//nolint:funlen // bootstrap code is inherently verbose
func serve(parent context.Context) error {
	ctx, stop := signalContext(parent)
	defer stop()

	cfg, err := config.Load(configFile())
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	var telemetry *core.Telemetry
	if cfg.Otel.Enabled {
		tel, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		if telErr != nil {
			logger.Warn("failed to initialize telemetry", "error", telErr)
		} else {
			telemetry = tel
			logger.Info("OpenTelemetry tracer initialized",
				"endpoint", cfg.Otel.Endpoint,
			)
		}
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	jwtManager, err := auth.NewJWTManager(cfg.JWT)
	if err != nil {
		return err
	}
	logger.Info("JWT manager initialized",
		"algorithm", "ES256",
		"key_id", jwtManager.GetKeyID(),
	)

	m := metrics.New()
	hub := realtime.NewHub(logger, m)

	userSvc := user.NewService(user.NewRepository(db.DB))
	userHandler := user.NewHandler(userSvc)

	authSvc := auth.NewService(jwtManager, userSvc, redis, logger)
	authHandler := auth.NewHandler(authSvc)

	var images menu.ImageStore
	if cfg.Storage.Enabled() {
		store, storeErr := media.NewS3Store(ctx, cfg.Storage)
		if storeErr != nil {
			return storeErr
		}
		images = store
		logger.Info("menu image storage enabled", "bucket", cfg.Storage.Bucket)
	}

	menuSvc := menu.NewService(menu.NewRepository(db.DB), images, logger)
	menuHandler := menu.NewHandler(menuSvc, cfg.Storage.MaxUploadBytes)

	orderSvc := order.NewService(order.NewRepository(db.DB), hub, m, logger)
	orderHandler := order.NewHandler(orderSvc)

	statsHandler := statistics.NewHandler(
		statistics.NewService(statistics.NewRepository(db.DB)),
	)

	var assistantHandler *assistant.Handler
	if cfg.Assistant.Enabled() {
		gemini, geminiErr := assistant.NewGeminiClient(ctx, cfg.Assistant)
		if geminiErr != nil {
			return geminiErr
		}
		assistantHandler = assistant.NewHandler(assistant.NewService(menuSvc, gemini, logger))
		logger.Info("assistant enabled", "model", cfg.Assistant.Model)
	}

	realtimeHandler := realtime.NewHandler(hub, cfg.Realtime, logger)

	healthHandler := health.NewHandler(
		health.Dependency{Name: "database", Checker: db},
		health.Dependency{Name: "redis", Checker: redis},
	)

	adminHandler := admin.NewHandler(admin.HandlerConfig{
		DBStats:       db.Stats,
		RedisStats:    redis.PoolStats,
		DBPing:        db.Ping,
		RedisPing:     redis.Ping,
		RealtimeStats: hub.Stats,
	})

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
		OnShutdown:    []server.Closer{hub.CloseAll},
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recoverer(logger))
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))
	router.Use(m.Middleware())
	router.Use(
		middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
			Limit: middleware.PerWindow(
				cfg.RateLimit.Requests,
				cfg.RateLimit.Window,
				cfg.RateLimit.Burst,
			),
			FailOpen: true,
		}).Handler,
	)

	healthHandler.RegisterRoutes(router)
	router.Handle("/metrics", m.Handler())
	router.Get("/.well-known/jwks.json", jwtManager.GetJWKSHandler())
	realtimeHandler.RegisterRoutes(router)

	authenticator := middleware.Authenticate(authSvc)
	kitchenOnly := middleware.RequireRole(authz.Kitchen...)
	adminOnly := middleware.RequireRole(authz.Admins...)

	orderLimit := middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
		Limit: middleware.PerWindow(
			cfg.RateLimit.OrderRequests,
			cfg.RateLimit.OrderWindow,
			cfg.RateLimit.OrderRequests,
		),
		KeyFunc:  middleware.KeyByUserScope("orders"),
		FailOpen: true,
	}).Handler

	authHandler.RegisterRoutes(router, authenticator)
	menuHandler.RegisterRoutes(router, authenticator, kitchenOnly)
	orderHandler.RegisterRoutes(router, authenticator, orderLimit)
	statsHandler.RegisterRoutes(router, authenticator, kitchenOnly)
	userHandler.RegisterAdminRoutes(router, authenticator, adminOnly)
	adminHandler.RegisterRoutes(router, authenticator, adminOnly)

	if assistantHandler != nil {
		assistantLimit := middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
			Limit: middleware.PerWindow(
				cfg.RateLimit.AssistantLimit,
				cfg.RateLimit.Window,
				cfg.RateLimit.AssistantLimit,
			),
			KeyFunc:  middleware.KeyByUserScope("ai"),
			FailOpen: true,
		}).Handler
		assistantHandler.RegisterRoutes(router, authenticator, assistantLimit)
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	if err := redis.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}
