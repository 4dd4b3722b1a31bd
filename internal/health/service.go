package health

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aurafleet/aurafleet/internal/anomaly"
)

// CacheMetrics records latest-cache effectiveness.
type CacheMetrics interface {
	RecordCacheHit()
	RecordCacheMiss()
}

// Service runs the health-decision pipeline and serves health reads.
type Service struct {
	repo    Repository
	cache   LatestCache
	learned *anomaly.LearnedScorer
	metrics CacheMetrics
	logger  zerolog.Logger
}

// ServiceConfig holds dependencies for the health service.
type ServiceConfig struct {
	Repository    Repository
	Cache         LatestCache
	LearnedScorer *anomaly.LearnedScorer

	// Metrics records cache instrumentation; optional.
	Metrics CacheMetrics

	Logger zerolog.Logger
}

// NewService creates a new health service.
func NewService(cfg ServiceConfig) *Service {
	cache := cfg.Cache
	if cache == nil {
		cache = NewStripedCache()
	}
	learned := cfg.LearnedScorer
	if learned == nil {
		learned = anomaly.NewLearnedScorer(nil, cfg.Logger)
	}
	return &Service{
		repo:    cfg.Repository,
		cache:   cache,
		learned: learned,
		metrics: cfg.Metrics,
		logger:  cfg.Logger,
	}
}

// IngestResult is what an accepted ingestion reports back to the pipeline.
type IngestResult struct {
	VehicleID     string             `json:"vehicle_id"`
	Score         float64            `json:"anomaly_score"`
	Components    anomaly.Components `json:"subsystems"`
	RuleScore     float64            `json:"rule_score"`
	LearnedScore  float64            `json:"learned_score"`
	LearnedLabel  anomaly.Label      `json:"learned_label"`
	LearnedStatus anomaly.Status     `json:"learned_status"`
	Severity      Severity           `json:"severity"`
}

// Ingest runs one sensor frame through the full pipeline: normalization,
// rule and learned scoring, fusion, then the durable write and the cache
// update as one logical operation. If the durable write fails the whole
// ingestion fails and the cache is left untouched.
func (s *Service) Ingest(ctx context.Context, frame anomaly.SensorFrame) (*IngestResult, error) {
	if frame.VehicleID == "" {
		return nil, fmt.Errorf("%w: vehicle id is required", ErrInvalidFrame)
	}

	components := anomaly.Normalize(frame)
	ruleScore := anomaly.RuleScore(components)

	learned := s.learned.Score(frame)
	if learned.Status == anomaly.StatusFaulted {
		s.logger.Warn().
			Str("vehicle_id", frame.VehicleID).
			Err(learned.Cause).
			Msg("learned scorer faulted, ingesting with sentinel score")
	}

	fused := anomaly.Fuse(ruleScore, learned.Score)

	record := &Record{
		VehicleID:    frame.VehicleID,
		Score:        fused,
		Components:   components,
		RawSensors:   frame.Channels,
		LearnedLabel: learned.Label,
		RuleScore:    ruleScore,
		CreatedAt:    time.Now().UTC(),
	}
	if learned.Status == anomaly.StatusOK {
		score := learned.Score
		record.LearnedScore = &score
	}

	if err := record.Validate(); err != nil {
		return nil, err
	}

	// Durable write first; the cache must never run ahead of the log.
	if err := s.repo.Insert(ctx, record); err != nil {
		return nil, fmt.Errorf("storing health snapshot: %w", err)
	}
	s.cache.Put(record)

	s.logger.Debug().
		Str("vehicle_id", frame.VehicleID).
		Float64("score", fused).
		Str("learned_status", string(learned.Status)).
		Msg("health snapshot ingested")

	return &IngestResult{
		VehicleID:     frame.VehicleID,
		Score:         fused,
		Components:    components,
		RuleScore:     ruleScore,
		LearnedScore:  learned.Score,
		LearnedLabel:  learned.Label,
		LearnedStatus: learned.Status,
		Severity:      Classify(fused),
	}, nil
}

// Latest returns the latest health record for a vehicle. On a cache miss
// it recovers from the durable log, which stays authoritative.
func (s *Service) Latest(ctx context.Context, vehicleID string) (*Record, error) {
	if record, ok := s.cache.Get(vehicleID); ok {
		if s.metrics != nil {
			s.metrics.RecordCacheHit()
		}
		return record, nil
	}
	if s.metrics != nil {
		s.metrics.RecordCacheMiss()
	}

	record, err := s.repo.Latest(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	s.cache.Put(record)
	return record, nil
}

// History returns up to limit snapshots for a vehicle, oldest first.
func (s *Service) History(ctx context.Context, vehicleID string, limit int) ([]*Record, error) {
	return s.repo.History(ctx, vehicleID, limit)
}

// ContactDecision derives the contact decision from the vehicle's latest
// record. A vehicle with no data gets the terminal no-data default, not an
// error.
func (s *Service) ContactDecision(ctx context.Context, vehicleID string) (Decision, error) {
	record, err := s.Latest(ctx, vehicleID)
	if err != nil {
		if errors.Is(err, ErrNoHealthData) {
			return NoDataDecision(vehicleID), nil
		}
		return Decision{}, err
	}
	return Decide(vehicleID, record.Score), nil
}

// ListVehicles returns the fleet list: every known vehicle with its latest
// score and severity bucket. Vehicles present in the log but not yet
// re-scored since startup report the unknown tier.
func (s *Service) ListVehicles(ctx context.Context) ([]VehicleStatus, error) {
	ids, err := s.repo.ListVehicleIDs(ctx)
	if err != nil {
		return nil, err
	}

	cached := s.cache.Snapshot()
	statuses := make([]VehicleStatus, 0, len(ids))
	for _, id := range ids {
		status := VehicleStatus{VehicleID: id, Status: SeverityUnknown}
		if record, ok := cached[id]; ok {
			score := record.Score
			status.Score = &score
			status.Status = Classify(score)
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

// FleetSummary aggregates severity tier counts across the fleet.
func (s *Service) FleetSummary(ctx context.Context) (*FleetSummary, error) {
	statuses, err := s.ListVehicles(ctx)
	if err != nil {
		return nil, err
	}

	summary := &FleetSummary{Total: len(statuses)}
	for _, status := range statuses {
		switch status.Status {
		case SeverityCritical:
			summary.Critical++
		case SeverityWarning:
			summary.Warning++
		case SeverityOK:
			summary.OK++
		default:
			summary.Unknown++
		}
	}
	return summary, nil
}
