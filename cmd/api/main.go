// Package main provides the entrypoint for the AuraFleet API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/aurafleet/aurafleet/internal/anomaly"
	"github.com/aurafleet/aurafleet/internal/api"
	"github.com/aurafleet/aurafleet/internal/api/middleware"
	"github.com/aurafleet/aurafleet/internal/auth"
	"github.com/aurafleet/aurafleet/internal/booking"
	"github.com/aurafleet/aurafleet/internal/database"
	"github.com/aurafleet/aurafleet/internal/health"
	"github.com/aurafleet/aurafleet/internal/scheduling"
	"github.com/aurafleet/aurafleet/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "aurafleet-api"

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting AuraFleet API")

	// Get configuration from environment
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	otlpEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otlpEndpoint == "" {
		otlpEndpoint = "localhost:4317"
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	// Initialize OpenTelemetry
	ctx := context.Background()
	telemetryEnabled := os.Getenv("OTEL_ENABLED") == "true"

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    env,
		OTLPEndpoint:   otlpEndpoint,
		Enabled:        telemetryEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if telemetryEnabled {
		log.Info().
			Str("otlp_endpoint", otlpEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	pipelineMetrics, err := middleware.NewPipelineMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize pipeline metrics")
		os.Exit(1)
	}

	// Connect to database
	dbConfig := database.ConfigFromEnv()
	pool, err := database.Connect(ctx, dbConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	log.Info().
		Str("host", dbConfig.Host).
		Int("port", dbConfig.Port).
		Str("database", dbConfig.Database).
		Msg("database connected")

	// Initialize JWT token service (get signing key from environment)
	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		jwtSigningKey = "local-dev-signing-key-change-in-production"
		log.Warn().Msg("using default JWT signing key - not secure for production")
	}

	tokenService := auth.NewTokenService(auth.TokenConfig{
		SigningKey: jwtSigningKey,
		Issuer:     "https://api.aurafleet.io",
		Audience:   "aurafleet-api",
	})

	authService := auth.NewService(auth.ServiceConfig{
		Tokens: tokenService,
		Logger: log,
	})
	log.Info().Msg("auth service initialized")

	// Load the pre-trained outlier model. A missing artifact degrades the
	// learned scorer rather than failing startup.
	modelPath := os.Getenv("MODEL_PATH")
	if modelPath == "" {
		modelPath = "models/outlier_model.json"
	}
	learnedScorer, err := anomaly.LoadLearnedScorer(modelPath, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load anomaly model artifact")
	}

	// Initialize domain services
	healthService := health.NewService(health.ServiceConfig{
		Repository:    health.NewPostgresRepository(pool),
		LearnedScorer: learnedScorer,
		Metrics:       pipelineMetrics,
		Logger:        log,
	})
	log.Info().Msg("health service initialized")

	bookingService := booking.NewService(booking.ServiceConfig{
		Repository: booking.NewPostgresRepository(pool),
		Logger:     log,
	})
	log.Info().Msg("booking service initialized")

	schedulingService := scheduling.NewService(scheduling.ServiceConfig{
		Decisions: healthService,
		Bookings:  bookingService,
		Logger:    log,
	})
	log.Info().Msg("scheduling service initialized")

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:           Version,
		BuildTime:         BuildTime,
		Logger:            log,
		ServiceName:       serviceName,
		Metrics:           metrics,
		DB:                pool,
		AuthService:       authService,
		HealthService:     healthService,
		BookingService:    bookingService,
		SchedulingService: schedulingService,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
