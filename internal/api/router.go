// Package api provides the HTTP API for AuraFleet.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/aurafleet/aurafleet/internal/api/handler"
	"github.com/aurafleet/aurafleet/internal/api/middleware"
	"github.com/aurafleet/aurafleet/internal/auth"
	"github.com/aurafleet/aurafleet/internal/booking"
	"github.com/aurafleet/aurafleet/internal/health"
	"github.com/aurafleet/aurafleet/internal/scheduling"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version           string
	BuildTime         string
	Logger            zerolog.Logger
	ServiceName       string
	Metrics           *middleware.Metrics
	DB                handler.Pinger
	AuthService       *auth.Service
	HealthService     *health.Service
	BookingService    *booking.Service
	SchedulingService *scheduling.Service
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "aurafleet-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction

	// Initialize handlers
	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.DB)
	authHandler := handler.NewAuthHandler(cfg.AuthService)
	healthHandler := handler.NewHealthHandler(cfg.HealthService)
	bookingHandler := handler.NewBookingHandler(cfg.BookingService)
	schedulingHandler := handler.NewSchedulingHandler(cfg.SchedulingService)

	authMiddleware := middleware.Auth(cfg.AuthService)

	authRateLimit := middleware.RateLimitByIP(middleware.AuthRateLimit)         // 10 req/min
	ingestRateLimit := middleware.RateLimitByIP(middleware.ExpensiveRateLimit)  // 30 req/min
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit) // 100 req/min

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		// Auth endpoints (public) - strict rate limiting
		r.Route("/auth", func(r chi.Router) {
			r.Use(authRateLimit)
			r.Post("/login", authHandler.Login)
			r.Post("/validate", authHandler.ValidateToken)
		})

		// Ops endpoints (public)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			// Status endpoint requires authentication
			r.With(authMiddleware).Get("/status", opsHandler.SystemStatus)
		})

		// Ingest endpoint (trusted internal pipeline, unauthenticated)
		r.With(ingestRateLimit).Post("/ingest", healthHandler.Ingest)

		// Vehicle-scoped reads (authenticated, matrix-checked in handlers)
		r.Route("/vehicles/{vehicleId}", func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(middleware.RateLimitByUser(middleware.StandardRateLimit))
			r.Get("/health", healthHandler.GetVehicleHealth)
			r.Get("/history", healthHandler.GetVehicleHistory)
			r.Get("/contact-decision", healthHandler.GetContactDecision)
			r.Get("/slots", schedulingHandler.ProposeSlots)
			r.Get("/bookings", bookingHandler.ForVehicle)
		})

		// Fleet views (authenticated)
		r.Route("/fleet", func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(middleware.RateLimitByUser(middleware.StandardRateLimit))
			r.Get("/vehicles", healthHandler.ListVehicles)
			r.Get("/summary", healthHandler.GetFleetSummary)
		})

		// Booking lifecycle (authenticated)
		r.Route("/bookings", func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(standardRateLimit)
			r.Post("/", bookingHandler.Confirm)
			r.Get("/upcoming", bookingHandler.Upcoming)
		})
	})

	return r
}
