package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"

	"github.com/aurafleet/aurafleet/internal/anomaly"
	"github.com/aurafleet/aurafleet/internal/health"
)

// ingestPipeline runs one sensor frame through the scoring pipeline.
type ingestPipeline interface {
	Ingest(ctx context.Context, frame anomaly.SensorFrame) (*health.IngestResult, error)
}

// decisionForwarder pushes warranted contact decisions downstream.
type decisionForwarder interface {
	ForwardDecision(ctx context.Context, decision health.Decision) error
}

// ingestMetrics records per-frame pipeline instrumentation.
type ingestMetrics interface {
	RecordIngest(severity string, duration time.Duration, err error)
}

// frameMessage is the wire shape of one telemetry frame on the topic.
// It matches the HTTP ingest request body.
type frameMessage struct {
	VehicleID string             `json:"vehicle_id"`
	Sensors   map[string]float64 `json:"sensors"`
}

// disposition is what the handler decides to do with a message.
type disposition int

const (
	dispositionAck disposition = iota
	dispositionNack
)

// Subscriber receives telemetry frames from Pub/Sub and feeds them into
// the ingest pipeline. Delivery is at-least-once: frames that fail the
// durable write are nacked and redeliver; malformed frames are acked and
// dropped, redelivery cannot fix them.
type Subscriber struct {
	client       *pubsub.Client
	subscriber   *pubsub.Subscriber
	subscription string
	pipeline     ingestPipeline
	contacts     decisionForwarder
	metrics      ingestMetrics
	logger       zerolog.Logger
}

// SubscriberConfig holds configuration for the telemetry subscriber.
type SubscriberConfig struct {
	Config   Config
	Pipeline ingestPipeline

	// Contacts forwards warranted decisions; optional, best-effort.
	Contacts decisionForwarder

	// Metrics records ingest instrumentation; optional.
	Metrics ingestMetrics

	Logger zerolog.Logger
}

// NewSubscriber creates a telemetry subscriber.
func NewSubscriber(ctx context.Context, cfg SubscriberConfig) (*Subscriber, error) {
	client, err := pubsub.NewClient(ctx, cfg.Config.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	subscriber := client.Subscriber(cfg.Config.Subscription)
	subscriber.ReceiveSettings.MaxOutstandingMessages = cfg.Config.MaxOutstanding
	subscriber.ReceiveSettings.MaxExtension = cfg.Config.MaxExtension

	return &Subscriber{
		client:       client,
		subscriber:   subscriber,
		subscription: cfg.Config.Subscription,
		pipeline:     cfg.Pipeline,
		contacts:     cfg.Contacts,
		metrics:      cfg.Metrics,
		logger:       cfg.Logger,
	}, nil
}

// Start begins receiving telemetry frames. Blocks until ctx is cancelled
// or the subscription fails.
func (s *Subscriber) Start(ctx context.Context) error {
	s.logger.Info().
		Str("subscription", s.subscription).
		Msg("starting telemetry subscriber")

	return s.subscriber.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		logger := s.logger.With().
			Str("message_id", msg.ID).
			Str("publish_time", msg.PublishTime.Format(time.RFC3339)).
			Logger()

		switch s.process(logger.WithContext(ctx), msg.Data) {
		case dispositionNack:
			msg.Nack()
		default:
			msg.Ack()
		}
	})
}

// Close closes the Pub/Sub client.
func (s *Subscriber) Close() error {
	return s.client.Close()
}

// process runs one raw frame through the pipeline and decides the message
// disposition. Forwarding faults never turn into nacks: the snapshot is
// already committed and a redelivery would double-ingest it.
func (s *Subscriber) process(ctx context.Context, data []byte) disposition {
	logger := zerolog.Ctx(ctx)

	var msg frameMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		logger.Warn().Err(err).Msg("dropping malformed telemetry frame")
		return dispositionAck
	}

	start := time.Now()
	result, err := s.pipeline.Ingest(ctx, anomaly.SensorFrame{
		VehicleID: msg.VehicleID,
		Channels:  msg.Sensors,
	})
	if s.metrics != nil {
		severity := ""
		if result != nil {
			severity = string(result.Severity)
		}
		s.metrics.RecordIngest(severity, time.Since(start), err)
	}
	if err != nil {
		if errors.Is(err, health.ErrInvalidFrame) {
			logger.Warn().Err(err).Msg("dropping invalid telemetry frame")
			return dispositionAck
		}
		logger.Error().Err(err).
			Str("vehicle_id", msg.VehicleID).
			Msg("frame ingestion failed, message will redeliver")
		return dispositionNack
	}

	logger.Debug().
		Str("vehicle_id", result.VehicleID).
		Float64("score", result.Score).
		Str("severity", string(result.Severity)).
		Msg("telemetry frame ingested")

	if s.contacts != nil {
		decision := health.Decide(result.VehicleID, result.Score)
		if decision.ShouldContact {
			if err := s.contacts.ForwardDecision(ctx, decision); err != nil {
				logger.Warn().Err(err).
					Str("vehicle_id", result.VehicleID).
					Msg("contact decision forwarding failed")
			}
		}
	}

	return dispositionAck
}
