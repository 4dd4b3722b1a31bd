// Package main provides the entrypoint for the AuraFleet ingest worker.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/aurafleet/aurafleet/internal/anomaly"
	"github.com/aurafleet/aurafleet/internal/api/middleware"
	"github.com/aurafleet/aurafleet/internal/database"
	"github.com/aurafleet/aurafleet/internal/health"
	"github.com/aurafleet/aurafleet/internal/notify"
	"github.com/aurafleet/aurafleet/internal/telemetry"
	"github.com/aurafleet/aurafleet/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "aurafleet-worker"

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting AuraFleet ingest worker")

	// Worker also exposes a health endpoint for Cloud Run
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry
	telemetryEnabled := os.Getenv("OTEL_ENABLED") == "true"
	otlpEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otlpEndpoint == "" {
		otlpEndpoint = "localhost:4317"
	}

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    os.Getenv("APP_ENV"),
		OTLPEndpoint:   otlpEndpoint,
		Enabled:        telemetryEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	pipelineMetrics, err := middleware.NewPipelineMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize pipeline metrics")
	}

	// Connect to database
	dbConfig := database.ConfigFromEnv()
	pool, err := database.Connect(ctx, dbConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	// Load the pre-trained outlier model
	modelPath := os.Getenv("MODEL_PATH")
	if modelPath == "" {
		modelPath = "models/outlier_model.json"
	}
	learnedScorer, err := anomaly.LoadLearnedScorer(modelPath, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load anomaly model artifact")
	}

	healthService := health.NewService(health.ServiceConfig{
		Repository:    health.NewPostgresRepository(pool),
		LearnedScorer: learnedScorer,
		Metrics:       pipelineMetrics,
		Logger:        log,
	})

	// Engagement client for warranted contact decisions
	engagementClient := notify.NewClient(notify.ClientConfig{
		BaseURL: os.Getenv("ENGAGEMENT_SERVICE_URL"),
		APIKey:  os.Getenv("ENGAGEMENT_API_KEY"),
		Logger:  log,
	})

	// Telemetry subscriber
	subscriber, err := worker.NewSubscriber(ctx, worker.SubscriberConfig{
		Config:   worker.ConfigFromEnv(),
		Pipeline: healthService,
		Contacts: engagementClient,
		Metrics:  pipelineMetrics,
		Logger:   log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create telemetry subscriber")
	}
	defer subscriber.Close()

	// Create HTTP server for health checks
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"healthy","version":"%s"}`, Version)
	})

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("health check server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("health server error")
		}
	}()

	// Start receiving frames
	go func() {
		if err := subscriber.Start(ctx); err != nil && ctx.Err() == nil {
			log.Fatal().Err(err).Msg("telemetry subscriber failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down worker")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server forced to shutdown")
	}

	log.Info().Msg("worker stopped")
}
