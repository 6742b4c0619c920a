// Copyright (c) 2026 Safar. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command authstub is the development backend for the Safar mobile sign-in.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL and run migrations, when DATABASE_URL is set.
//  4. Connect to Redis, when REDIS_URL is set.
//  5. Load or generate the token signing keys.
//  6. Wire the sign-in service and seed the password account.
//  7. Start HTTP server with graceful shutdown.
//
// Without PostgreSQL or Redis the matching data lives in memory.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/taibuivan/safar/internal/api"
	"github.com/taibuivan/safar/internal/devauth"
	"github.com/taibuivan/safar/internal/i18n"
	"github.com/taibuivan/safar/internal/platform/config"
	"github.com/taibuivan/safar/internal/platform/constants"
	"github.com/taibuivan/safar/internal/platform/migration"
	pgstore "github.com/taibuivan/safar/internal/platform/postgres"
	redisstore "github.com/taibuivan/safar/internal/platform/redis"
	"github.com/taibuivan/safar/internal/platform/sec"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	log := newLogger(slog.LevelInfo)
	slog.SetDefault(log)

	log.Info("[Safar] authstub_initializing", slog.String("version", constants.AppVersion))

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.LoadServer()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(slog.LevelDebug)
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.Bool("postgres", cfg.HasDatabase()),
		slog.Bool("redis", cfg.HasRedis()),
	)

	// Root context for background workers, cancelled on shutdown.
	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	// Startup gets a deadline so misconfiguration is caught quickly.
	startupCtx, startupCancel := context.WithTimeout(rootCtx, 30*time.Second)
	defer startupCancel()

	var (
		accounts devauth.AccountRepository = devauth.NewMemoryAccountRepository()
		codes    devauth.CodeRepository    = devauth.NewMemoryCodeRepository()
		health   api.HealthDependencies
	)

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	if cfg.HasDatabase() {
		must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

		pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
		must(log, err, "connect to postgres")
		defer func() {
			log.Info("closing_postgres_pool")
			pool.Close()
		}()

		accounts = devauth.NewAccountRepository(pool)
		health.CheckDatabase = func(ctx context.Context) error {
			return pgstore.Ping(ctx, pool)
		}
	}

	// ── 4. Redis ──────────────────────────────────────────────────────────
	if cfg.HasRedis() {
		rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
		must(log, err, "connect to redis")
		defer func() {
			log.Info("closing_redis_client")
			if cerr := rdb.Close(); cerr != nil {
				log.Error("redis_close_error", slog.Any("error", cerr))
			}
		}()

		codes = devauth.NewCodeRepository(rdb)
		health.CheckCache = func(ctx context.Context) error {
			return redisstore.Ping(ctx, rdb)
		}
	}

	// ── 5. Token Service ──────────────────────────────────────────────────
	var tokens *sec.TokenService
	if cfg.JWTPrivKeyPath != "" {
		tokens, err = sec.NewTokenService(cfg.JWTPrivKeyPath, cfg.JWTPubKeyPath, constants.AuthIssuer)
	} else {
		log.Warn("jwt_ephemeral_keys", slog.String("hint", "tokens become invalid on restart"))
		tokens, err = sec.NewEphemeralTokenService(constants.AuthIssuer)
	}
	must(log, err, "initialize jwt service")

	// ── 6. Domain Wiring ──────────────────────────────────────────────────
	service := devauth.NewService(rootCtx,
		accounts,
		codes,
		tokens,
		devauth.LogSender{Logger: log, Echo: cfg.OTPDevEcho},
		i18n.New(cfg.Language),
		log,
	)

	if cfg.HasSeedAccount() {
		must(log, service.SeedAccount(startupCtx, cfg.SeedMobile, cfg.SeedPassword), "seed account")
	}

	liveness, readiness := api.NewHealthHandlers(health, log)
	server := api.NewServer(rootCtx, cfg, log, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      devauth.NewHandler(service, tokens),
	})

	// ── 7. Graceful Shutdown ──────────────────────────────────────────────
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
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server_startup_error", slog.Any("error", err))
	}

	log.Info("shutting_down_server", slog.Duration("timeout", constants.ShutdownTimeout))

	if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
		log.Error("shutdown_error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server_stopped_cleanly")
}

func newLogger(level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With(slog.String("app", constants.StubName))
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, all errors are returned and
// handled explicitly.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
