// Copyright (c) 2026 Aula. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the Aula HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis when configured.
//  5. Run database migrations (idempotent).
//  6. Build the cache, security and rate limiting services.
//  7. Wire HTTP handlers.
//  8. Start HTTP server with graceful shutdown.
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
	"time"

	"github.com/benbjohnson/clock"
	goredis "github.com/redis/go-redis/v9"

	"github.com/taibuivan/aula/internal/api"
	"github.com/taibuivan/aula/internal/platform/cache"
	"github.com/taibuivan/aula/internal/platform/config"
	"github.com/taibuivan/aula/internal/platform/constants"
	"github.com/taibuivan/aula/internal/platform/middleware"
	"github.com/taibuivan/aula/internal/platform/migration"
	pgstore "github.com/taibuivan/aula/internal/platform/postgres"
	"github.com/taibuivan/aula/internal/platform/ratelimit"
	redisstore "github.com/taibuivan/aula/internal/platform/redis"
	"github.com/taibuivan/aula/internal/platform/sec"
	"github.com/taibuivan/aula/internal/school/student"
	"github.com/taibuivan/aula/internal/users/auth"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	log := newLogger(slog.LevelInfo)
	slog.SetDefault(log)

	log.Info("service_initializing")

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
		slog.String("cache_backend", cfg.CacheBackend),
		slog.String("rate_limit_store", cfg.RateLimitStore),
	)

	// Root context for background workers (cache janitor, throttle sweeper).
	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	// Startup deadline so misconfiguration fails fast.
	startupCtx, startupCancel := context.WithTimeout(rootCtx, 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, pgstore.Options{
		MaxConns: cfg.DatabaseMaxConns,
		MinConns: cfg.DatabaseMinConns,
	}, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing_postgres_pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	var rdb *goredis.Client
	if cfg.RedisURL != "" {
		rdb, err = redisstore.NewClient(startupCtx, cfg.RedisURL, cfg.RedisPoolSize, log)
		must(log, err, "connect to redis")
		defer func() {
			log.Info("closing_redis_client")
			if cerr := rdb.Close(); cerr != nil {
				log.Error("redis_close_failed", slog.Any("error", cerr))
			}
		}()
	}

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Cache ──────────────────────────────────────────────────────────
	var backend cache.Backend = cache.NewPostgresBackend(pool)
	if cfg.CacheBackend == config.CacheBackendRedis {
		backend = cache.NewRedisBackend(rdb, constants.RedisPrefixCache)
	}

	systemClock := clock.New()
	store, err := cache.New(backend, cache.Options{
		DefaultTTL: cfg.CacheDefaultTTL,
		MemorySize: cfg.CacheMemorySize,
		Clock:      systemClock,
		Logger:     log,
	})
	must(log, err, "initialize cache")
	cache.StartJanitor(rootCtx, store, cfg.CacheCleanupInterval)

	// ── 7. Security ───────────────────────────────────────────────────────
	jwtSvc, err := sec.NewTokenService(cfg.JWTPrivKeyPath, cfg.JWTPubKeyPath, constants.AuthIssuer)
	must(log, err, "initialize jwt service")

	hashConfig := sec.DefaultHashConfig()
	hashConfig.MemoryKB = cfg.Argon2MemoryKB
	hashConfig.Time = cfg.Argon2Time
	hashConfig.Parallelism = cfg.Argon2Parallelism
	hasher, err := sec.NewPasswordHasher(hashConfig)
	must(log, err, "initialize password hasher")

	evaluator := sec.NewEvaluator()

	var windows ratelimit.WindowStore = ratelimit.NewCacheWindowStore(store)
	if cfg.RateLimitStore == config.RateLimitStoreMemory {
		windows = ratelimit.NewMemoryStore()
	}
	limiter := ratelimit.New(windows, ratelimit.Config{
		MaxAttempts: cfg.LoginMaxAttempts,
		Window:      cfg.LoginWindow,
	}, systemClock)

	// ── 8. Health handlers (wired with real dependency checkers) ──────────
	dependencies := api.HealthDependencies{
		CheckDatabase: func(ctx context.Context) error {
			return pgstore.Ping(ctx, pool)
		},
	}
	if rdb != nil {
		dependencies.CheckCache = func(ctx context.Context) error {
			return redisstore.Ping(ctx, rdb)
		}
	}
	liveness, readiness := api.NewHealthHandlers(dependencies, log)

	// ── 9. Domain Wiring ──────────────────────────────────────────────────
	userRepository := auth.NewUserRepository(pool)
	authCache := auth.NewCache(store, userRepository, evaluator)
	authService := auth.NewService(
		userRepository,
		authCache,
		hasher,
		jwtSvc,
		limiter,
		evaluator,
		systemClock,
		log,
	)

	studentService := student.NewService(student.NewPostgresRepository(pool), store, log)

	// ── 10. HTTP Server ───────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      auth.NewHandler(authService),
		Students:  student.NewHandler(studentService, evaluator),
		Cache:     api.NewCacheHandler(store, authCache),
	}

	proxies, err := middleware.ParseTrustedProxies(cfg.TrustedProxies)
	must(log, err, "parse trusted proxies")

	server := api.NewServer(rootCtx, cfg, log, api.Security{
		Verifier: jwtSvc,
		Resolver: authService,
		Proxies:  proxies,
	}, handlers)

	// ── 11. Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		log.Info("server_listening", slog.String("addr", ":"+cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server_startup_failed", slog.Any("error", err))
	}

	log.Info("shutting_down_server", slog.Duration("timeout", constants.ShutdownTimeout))

	if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
		log.Error("shutdown_failed", slog.Any("error", err))
		rootCancel()
		os.Exit(1)
	}

	rootCancel()
	log.Info("server_stopped_cleanly")
}

// newLogger builds the JSON logger tagged with the application name.
func newLogger(level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With(slog.String(constants.FieldApp, constants.AppName))
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// Limited to startup wiring. After startup, all errors are returned and
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
