package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
	"github.com/zonetune/zonetune/internal/api/handlers"
	"github.com/zonetune/zonetune/internal/api/middleware"
	"github.com/zonetune/zonetune/internal/cache"
	"github.com/zonetune/zonetune/internal/domain/repositories"
	"github.com/zonetune/zonetune/internal/domain/services"
	"github.com/zonetune/zonetune/internal/pkg/config"
	"github.com/zonetune/zonetune/internal/soundtrack"
	"gorm.io/gorm"
)

type Server struct {
	cfg        *config.Config
	router     *chi.Mux
	httpServer *http.Server
}

// Deps carries everything the route tree needs. Tokens is nil in token
// mode; the auth endpoints answer 409 in that case.
type Deps struct {
	DB       *gorm.DB
	Redis    *redis.Client
	Cache    cache.Cache
	Api      *soundtrack.Api
	Tokens   *soundtrack.TokenManager
	Schedule *services.ScheduleService
	RunRepo  *repositories.RunRepository
}

func NewServer(cfg *config.Config, deps *Deps) *Server {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(middleware.Logger())
	router.Use(middleware.Recoverer())
	router.Use(chimiddleware.Timeout(60 * time.Second))

	// CORS - support multiple origins (comma-separated in config)
	allowedOrigins := strings.Split(cfg.Server.FrontendURL, ",")
	for i := range allowedOrigins {
		allowedOrigins[i] = strings.TrimSpace(allowedOrigins[i])
	}
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	})
	router.Use(corsHandler.Handler)

	scheduleHandler := handlers.NewScheduleHandler(deps.Schedule, deps.RunRepo)
	runHandler := handlers.NewRunHandler(deps.RunRepo)
	remoteHandler := handlers.NewRemoteHandler(deps.Api, deps.Cache, deps.Schedule)
	authHandler := handlers.NewAuthHandler(deps.Tokens)
	healthHandler := handlers.NewHealthHandler(deps.DB, deps.Redis)

	router.Route("/api/v1", func(r chi.Router) {
		// Health
		r.Get("/health", healthHandler.Health)
		r.Get("/health/live", healthHandler.Live)

		// Auth (user mode only)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/logout", authHandler.Logout)

		// Schedules
		r.Get("/schedules", scheduleHandler.List)
		r.Post("/schedules", scheduleHandler.Create)
		r.Get("/schedules/{scheduleID}", scheduleHandler.Get)
		r.Put("/schedules/{scheduleID}", scheduleHandler.Update)
		r.Delete("/schedules/{scheduleID}", scheduleHandler.Delete)
		r.Post("/schedules/{scheduleID}/copy", scheduleHandler.Copy)
		r.Get("/schedules/{scheduleID}/targets", scheduleHandler.Targets)
		r.Post("/schedules/{scheduleID}/targets", scheduleHandler.SetTargets)
		r.Get("/schedules/{scheduleID}/actions", scheduleHandler.Actions)

		// Runs
		r.Get("/runs", runHandler.List)

		// Remote reads
		r.Get("/accounts", remoteHandler.Accounts)
		r.Get("/accounts/{accountID}", remoteHandler.Account)
		r.Get("/accounts/{accountID}/zones", remoteHandler.AccountZones)
		r.Get("/accounts/{accountID}/library", remoteHandler.Library)
		r.Get("/accounts/{accountID}/schedules", remoteHandler.AccountSchedules)
		r.Get("/zones", remoteHandler.Zones)
		r.Get("/zones/{zoneID}", remoteHandler.Zone)
		r.Get("/assignables/{assignableID}", remoteHandler.Assignable)

		// Cache
		r.Get("/cache", remoteHandler.CacheCount)
		r.Delete("/cache", remoteHandler.ClearCache)
	})

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &Server{
		cfg:        cfg,
		router:     router,
		httpServer: httpServer,
	}
}

func (s *Server) Start() error {
	log.Info().Str("addr", s.httpServer.Addr).Msg("Starting HTTP server")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Msg("Shutting down server...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	log.Info().Msg("Server stopped")
	return nil
}

func (s *Server) Router() *chi.Mux {
	return s.router
}
