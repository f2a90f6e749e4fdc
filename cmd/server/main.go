// Command server runs the LegiScan gateway: an HTTP service that fronts the
// LegiScan API behind a monthly quota ledger, a TTL response cache, and a
// bulk-operation scheduler.
//
// Startup order matters: config first (fail fast on a bad environment), then
// the cache store (Redis when configured, in-process otherwise), then the
// snapshot database, then the facade and router. Shutdown reverses it with a
// bounded grace period.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/vbc-hub/legis-gateway/internal/cache"
	"github.com/vbc-hub/legis-gateway/internal/config"
	httpapi "github.com/vbc-hub/legis-gateway/internal/http"
	"github.com/vbc-hub/legis-gateway/internal/legiscan"
	"github.com/vbc-hub/legis-gateway/internal/observability"
	"github.com/vbc-hub/legis-gateway/internal/quota"
	"github.com/vbc-hub/legis-gateway/internal/repo"
	"github.com/vbc-hub/legis-gateway/internal/scheduler"
	"github.com/vbc-hub/legis-gateway/internal/sysutil"
	"github.com/vbc-hub/legis-gateway/internal/upstream"
)

// version is stamped at build time via -ldflags.
var version = "dev"

func main() {
	// Optional .env for local development; the environment wins.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	sysutil.SetLogLevel(cfg.LogLevel)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	log.Info().Str("version", version).Str("state", cfg.Upstream.State).Msg("starting legis-gateway")

	ctx := context.Background()

	// Tracing (no-op unless OTEL_ENABLED).
	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}

	// Shared key-value store: Redis when configured, otherwise in-process.
	// The quota counter and response cache both live here, so in the Redis
	// case multiple gateway instances share one budget.
	var store cache.Store
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			// Degraded but alive: the cache layer absorbs store errors and
			// the quota check fails open, so startup proceeds.
			log.Error().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable at startup")
		}
		store = cache.NewRedisStore(rdb)
		log.Info().Str("addr", cfg.RedisAddr).Msg("using redis store")
	} else {
		store = cache.NewMemoryStore()
		log.Warn().Msg("REDIS_ADDR not set, using in-process store (quota resets on restart)")
	}

	// Snapshot database for master-list change detection.
	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("failed to open snapshot db")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("snapshot migration failed")
	}

	var notifier quota.Notifier
	if cfg.Quota.AlertWebhook != "" {
		notifier = quota.NewWebhookNotifier(cfg.Quota.AlertWebhook)
	}
	ledger := quota.NewLedger(store, notifier, quota.Options{
		Prefix:         cfg.CachePrefix,
		MonthlyLimit:   cfg.Quota.MonthlyLimit,
		AlertThreshold: cfg.Quota.AlertThreshold,
		PeriodExpiry:   cfg.Quota.PeriodExpiry,
	}, log.With().Str("component", "quota").Logger())

	sched := scheduler.New(cfg.Bulk.PerWindow, cfg.Bulk.Window,
		log.With().Str("component", "scheduler").Logger())
	defer sched.Stop()

	client := upstream.NewClient(cfg.Upstream.BaseURL, cfg.Upstream.APIKey, cfg.Upstream.Timeout,
		log.With().Str("component", "upstream").Logger())

	facade := legiscan.New(
		cache.NewResponseCache(store, log.With().Str("component", "cache").Logger()),
		client, ledger, sched, db,
		legiscan.Options{
			Prefix: cfg.CachePrefix,
			State:  cfg.Upstream.State,
		},
		log.With().Str("component", "facade").Logger(),
	)

	gin.SetMode(cfg.GinMode)
	engine := gin.New()
	httpapi.RegisterRoutes(engine, facade, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown incomplete")
	}
	sched.Stop()
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	if err := shutdownOTel(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("otel shutdown incomplete")
	}
	log.Info().Msg("bye")
}
