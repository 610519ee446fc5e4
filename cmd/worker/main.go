package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zonetune/zonetune/internal/cache"
	"github.com/zonetune/zonetune/internal/domain/repositories"
	"github.com/zonetune/zonetune/internal/pkg/config"
	"github.com/zonetune/zonetune/internal/pkg/database"
	"github.com/zonetune/zonetune/internal/pkg/logger"
	pkgredis "github.com/zonetune/zonetune/internal/pkg/redis"
	"github.com/zonetune/zonetune/internal/scheduler/executor"
	"github.com/zonetune/zonetune/internal/scheduler/metrics"
	"github.com/zonetune/zonetune/internal/scheduler/poller"
	"github.com/zonetune/zonetune/internal/scheduler/store"
	"github.com/zonetune/zonetune/internal/soundtrack"
	"gorm.io/gorm"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize logger
	logger.Init(cfg.App.Environment, cfg.App.Debug)

	log.Info().
		Str("app", cfg.App.Name).
		Str("service", "worker").
		Int("interval_s", cfg.Worker.IntervalSeconds).
		Msg("Starting worker service")

	// Connect to database
	db, err := database.NewGormDB(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}

	// Migrations run in both processes so a worker-only deployment (the
	// database cache backend targets exactly that) starts on a fresh DB.
	if err := database.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// Select cache backend
	responseCache, err := newCache(cfg, db)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize cache")
	}

	// Build the Soundtrack client for the configured auth mode
	client := newSoundtrackClient(cfg, db)
	api := soundtrack.NewApi(client, responseCache)

	collector := metrics.NewCollector()
	gormStore := store.NewGormStore(db)
	exec := executor.New(gormStore, api, collector)

	p, err := poller.New(gormStore, exec, collector, cfg.Worker.Interval())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create poller")
	}

	// Metrics endpoint
	exporter := metrics.NewExporter(collector)
	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", exporter.Handler())
	mux.HandleFunc("/health", exporter.Health())

	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Worker.MetricsPort),
		Handler: mux,
	}
	go func() {
		log.Info().Str("addr", metricsServer.Addr).Msg("Starting metrics server")
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("Metrics server error")
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Received shutdown signal")

	cancel()
	<-done

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping metrics server")
	}

	log.Info().Msg("Worker stopped")
}

func newCache(cfg *config.Config, db *gorm.DB) (cache.Cache, error) {
	switch cfg.Cache.Backend {
	case "redis":
		redisClient, err := pkgredis.NewClient(&cfg.Redis)
		if err != nil {
			return nil, err
		}
		return cache.NewRedisCache(redisClient.Client), nil
	case "database":
		return cache.NewDatabaseCache(db), nil
	default:
		return cache.NewMemoryCache(), nil
	}
}

func newSoundtrackClient(cfg *config.Config, db *gorm.DB) *soundtrack.Client {
	clientCfg := soundtrack.ClientConfig{
		URL:         cfg.Soundtrack.URL,
		Concurrency: cfg.Soundtrack.Concurrency,
		MaxAttempts: cfg.Soundtrack.MaxAttempts,
		RetryDelay:  cfg.Soundtrack.RetryDelay,
	}
	if cfg.Soundtrack.Mode == "user" {
		tokenRepo := repositories.NewTokenRepository(db)
		clientCfg.Tokens = soundtrack.NewTokenManager(tokenRepo, cfg.Soundtrack.URL, nil)
	} else {
		clientCfg.APIToken = cfg.Soundtrack.APIToken
	}
	return soundtrack.NewClient(clientCfg)
}
