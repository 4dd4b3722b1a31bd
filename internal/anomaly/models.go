// Package anomaly implements the vehicle health scoring pipeline: feature
// normalization, the rule-based anomaly scorer, the learned outlier scorer,
// and score fusion.
package anomaly

// SensorFrame is a single raw telemetry reading for one vehicle.
// Channels is a sparse mapping of named sensor channels to numeric values;
// any subset of the known channels may be present.
type SensorFrame struct {
	VehicleID string             `json:"vehicle_id"`
	Channels  map[string]float64 `json:"sensors"`
}

// Components holds the normalized per-subsystem contributions to the
// anomaly score. Every field is in [0,1].
type Components struct {
	Brakes     float64 `json:"brakes"`
	Suspension float64 `json:"suspension"`
	Engine     float64 `json:"engine"`
	Electrical float64 `json:"electrical"`
	Tires      float64 `json:"tires"`
	Events     float64 `json:"events"`
}

// Label classifies the learned scorer's view of a frame.
type Label string

// Learned scorer labels.
const (
	LabelNormal  Label = "normal"
	LabelAnomaly Label = "anomaly"
	LabelUnknown Label = "unknown"
	LabelError   Label = "error"
)

// Status tags the outcome of a learned-scorer evaluation so callers can
// distinguish a healthy score from a degraded one.
type Status string

// Learned scorer statuses.
const (
	// StatusOK means the model evaluated the frame.
	StatusOK Status = "ok"

	// StatusUnavailable means no model artifact is loaded; the scorer
	// degraded to the sentinel score.
	StatusUnavailable Status = "unavailable"

	// StatusFaulted means the model failed mid-evaluation; the scorer
	// degraded to the sentinel score.
	StatusFaulted Status = "faulted"
)

// ScoreResult is the tagged result of a learned-scorer evaluation.
// Score is always in [0,1]; degraded results carry score 0.
type ScoreResult struct {
	Score  float64
	Label  Label
	Status Status

	// Cause is set only when Status is StatusFaulted.
	Cause error
}
