package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/zonetune/zonetune/internal/api"
	"github.com/zonetune/zonetune/internal/cache"
	"github.com/zonetune/zonetune/internal/domain/repositories"
	"github.com/zonetune/zonetune/internal/domain/services"
	"github.com/zonetune/zonetune/internal/pkg/config"
	"github.com/zonetune/zonetune/internal/pkg/database"
	"github.com/zonetune/zonetune/internal/pkg/logger"
	pkgredis "github.com/zonetune/zonetune/internal/pkg/redis"
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
		Str("service", "api").
		Str("environment", cfg.App.Environment).
		Msg("Starting API service")

	// Connect to database
	db, err := database.NewGormDB(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}

	if err := database.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// Select cache backend
	responseCache, redisClient, err := newCache(cfg, db)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize cache")
	}

	// Build the Soundtrack client for the configured auth mode
	var tokens *soundtrack.TokenManager
	clientCfg := soundtrack.ClientConfig{
		URL:         cfg.Soundtrack.URL,
		Concurrency: cfg.Soundtrack.Concurrency,
		MaxAttempts: cfg.Soundtrack.MaxAttempts,
		RetryDelay:  cfg.Soundtrack.RetryDelay,
	}
	if cfg.Soundtrack.Mode == "user" {
		tokenRepo := repositories.NewTokenRepository(db)
		tokens = soundtrack.NewTokenManager(tokenRepo, cfg.Soundtrack.URL, nil)
		clientCfg.Tokens = tokens
	} else {
		clientCfg.APIToken = cfg.Soundtrack.APIToken
	}
	client := soundtrack.NewClient(clientCfg)
	soundtrackApi := soundtrack.NewApi(client, responseCache)

	scheduleRepo := repositories.NewScheduleRepository(db)
	runRepo := repositories.NewRunRepository(db)
	scheduleSvc := services.NewScheduleService(scheduleRepo)

	server := api.NewServer(cfg, &api.Deps{
		DB:       db,
		Redis:    redisClient,
		Cache:    responseCache,
		Api:      soundtrackApi,
		Tokens:   tokens,
		Schedule: scheduleSvc,
		RunRepo:  runRepo,
	})

	go func() {
		if err := server.Start(); err != nil {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Received shutdown signal")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Error stopping server")
	}
}

func newCache(cfg *config.Config, db *gorm.DB) (cache.Cache, *redis.Client, error) {
	switch cfg.Cache.Backend {
	case "redis":
		client, err := pkgredis.NewClient(&cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		return cache.NewRedisCache(client.Client), client.Client, nil
	case "database":
		return cache.NewDatabaseCache(db), nil, nil
	default:
		return cache.NewMemoryCache(), nil, nil
	}
}
