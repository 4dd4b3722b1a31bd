// Package worker provides the streaming telemetry ingest worker for
// AuraFleet.
package worker

import (
	"os"
	"strconv"
	"time"
)

// Config holds configuration for the ingest worker.
type Config struct {
	// ProjectID is the Pub/Sub project carrying the telemetry topic.
	ProjectID string

	// Subscription is the Pub/Sub subscription to receive frames from.
	Subscription string

	// MaxOutstanding bounds the number of frames processed concurrently.
	// Default: 10
	MaxOutstanding int

	// MaxExtension is the maximum ack deadline extension per message.
	// Default: 10 minutes
	MaxExtension time.Duration
}

// DefaultConfig returns the default worker configuration.
func DefaultConfig() Config {
	return Config{
		Subscription:   "telemetry-frames",
		MaxOutstanding: 10,
		MaxExtension:   10 * time.Minute,
	}
}

// ConfigFromEnv builds a worker configuration from environment variables,
// falling back to defaults.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("PUBSUB_PROJECT_ID"); v != "" {
		cfg.ProjectID = v
	}
	if v := os.Getenv("PUBSUB_SUBSCRIPTION"); v != "" {
		cfg.Subscription = v
	}
	if v := os.Getenv("WORKER_MAX_OUTSTANDING"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxOutstanding = n
		}
	}

	return cfg
}
