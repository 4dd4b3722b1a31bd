// Package health owns the vehicle health store: the latest-record cache,
// the append-only snapshot history, severity classification, and the
// contact decision.
package health

import (
	"errors"
	"time"

	"github.com/aurafleet/aurafleet/internal/anomaly"
)

// Store errors.
var (
	ErrNoHealthData = errors.New("no health data for vehicle")
	ErrInvalidFrame = errors.New("invalid sensor frame")
)

// Record is one health snapshot for a vehicle. The fused Score is the
// authoritative anomaly score; the rule and learned sub-scores are kept for
// auditability.
type Record struct {
	VehicleID  string             `json:"vehicle_id"`
	Score      float64            `json:"anomaly_score"`
	Components anomaly.Components `json:"subsystems"`

	// RawSensors is the sensor snapshot the record was derived from,
	// kept for offline model training. Optional.
	RawSensors map[string]float64 `json:"raw_sensors,omitempty"`

	// Learned sub-score detail. LearnedScore is nil when the learned
	// scorer was degraded.
	LearnedScore *float64      `json:"learned_score"`
	LearnedLabel anomaly.Label `json:"learned_label"`
	RuleScore    float64       `json:"rule_score"`

	CreatedAt time.Time `json:"created_at"`
}

// Validate checks the record invariants: non-empty vehicle id, all scores
// in [0,1].
func (r *Record) Validate() error {
	if r.VehicleID == "" {
		return ErrInvalidFrame
	}
	scores := []float64{
		r.Score, r.RuleScore,
		r.Components.Brakes, r.Components.Suspension, r.Components.Engine,
		r.Components.Electrical, r.Components.Tires, r.Components.Events,
	}
	if r.LearnedScore != nil {
		scores = append(scores, *r.LearnedScore)
	}
	for _, s := range scores {
		if s < 0 || s > 1 {
			return errors.New("health record score out of [0,1]")
		}
	}
	return nil
}

// VehicleStatus is the role-scoped fleet list entry: id, latest score and
// severity bucket only.
type VehicleStatus struct {
	VehicleID string   `json:"vehicle_id"`
	Score     *float64 `json:"anomaly_score"`
	Status    Severity `json:"status"`
}

// FleetSummary aggregates tier counts across the fleet. No vehicle ids.
type FleetSummary struct {
	Total    int `json:"total"`
	OK       int `json:"ok"`
	Warning  int `json:"warning"`
	Critical int `json:"critical"`
	Unknown  int `json:"unknown"`
}
