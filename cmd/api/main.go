// Copyright (c) 2026 Katalog. All rights reserved.

// Command api is the entry point for the Katalog HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Open the catalog (PostgreSQL + migrations, or the in-process snapshot).
//  4. Seed an empty persistent backend from the static source.
//  5. Connect to Redis when configured.
//  6. Wire HTTP handlers.
//  7. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/EarnestL/k-atalog/internal/api"
	"github.com/EarnestL/k-atalog/internal/auth"
	"github.com/EarnestL/k-atalog/internal/bootstrap"
	"github.com/EarnestL/k-atalog/internal/core/catalog"
	"github.com/EarnestL/k-atalog/internal/platform/config"
	"github.com/EarnestL/k-atalog/internal/platform/constants"
	"github.com/EarnestL/k-atalog/internal/platform/middleware"
	redisstore "github.com/EarnestL/k-atalog/internal/platform/redis"
	"github.com/EarnestL/k-atalog/internal/platform/sec"
)

func newLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})).With(slog.String("app", constants.AppName))
}

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	log := newLogger(slog.LevelInfo)
	slog.SetDefault(log)

	log.Info("service_initializing", slog.String("version", constants.AppVersion))

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(slog.LevelDebug)
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.Bool("persistent_backend_configured", cfg.PersistentBackendConfigured()),
	)

	// Process-lifetime context: cancelled on shutdown to stop background work.
	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	startupCtx, startupCancel := context.WithTimeout(appCtx, constants.StartupTimeout)
	defer startupCancel()

	// ── 3. Catalog ────────────────────────────────────────────────────────
	catalogDeps, err := bootstrap.Open(startupCtx, cfg, log, bootstrap.Options{})
	must(log, err, "open catalog")
	defer func() {
		log.Info("closing catalog backend")
		catalogDeps.Close()
	}()

	// ── 4. Seeding ────────────────────────────────────────────────────────
	catalogDeps.Store.SeedIfEmpty(startupCtx)

	// ── 5. Redis (optional) ───────────────────────────────────────────────
	var limiter middleware.Limiter = middleware.NewLocalLimiter(appCtx, constants.DefaultRateLimitRPS, constants.DefaultRateLimitBurst)
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb, err = redisstore.NewClient(startupCtx, cfg.RedisURL, log)
		if err != nil {
			log.Warn("redis_unavailable_using_local_rate_limit", slog.Any("error", err))
		} else {
			limiter = redisstore.NewFixedWindow(rdb,
				int64(constants.DefaultRateLimitRPS*constants.RateLimitWindow.Seconds()),
				constants.RateLimitWindow,
			)
			defer func() {
				log.Info("closing redis client")
				if cerr := rdb.Close(); cerr != nil {
					log.Error("redis close error", slog.Any("error", cerr))
				}
			}()
		}
	}

	// ── 6. Token Verification ─────────────────────────────────────────────
	tokens := sec.NewTokenService(cfg.JWTSecret, cfg.JWTAudience)
	if !tokens.Configured() {
		log.Warn("token_verification_disabled")
	}

	// ── 7. Health handlers (wired with real dependency checkers) ──────────
	healthDeps := api.HealthDependencies{
		Backend:      catalogDeps.Backend(),
		CheckCatalog: catalogDeps.Check,
	}
	if rdb != nil {
		healthDeps.CheckCache = func(ctx context.Context) error {
			return redisstore.Ping(ctx, rdb)
		}
	}
	liveness, readiness := api.NewHealthHandlers(healthDeps, log)

	// ── 8. Domain Wiring ──────────────────────────────────────────────────
	catalogService := catalog.NewService(catalogDeps.Store, log)

	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      auth.NewHandler(tokens.Configured()),
		Catalog:   catalog.NewHandler(catalogService),
	}

	// ── 9. HTTP Server ────────────────────────────────────────────────────
	server := api.NewServer(cfg, log, api.Guards{Verifier: tokens, Limiter: limiter}, handlers)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	appCancel()

	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, all errors are returned and
// handled explicitly.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
