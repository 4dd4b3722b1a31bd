package anomaly

import (
	"fmt"

	"github.com/rs/zerolog"
)

// LearnedScorer wraps the pre-trained outlier model. It never fails the
// caller: a missing artifact degrades to score 0 / label "unknown" and an
// evaluation fault degrades to score 0 / label "error", both tagged on the
// result so callers can tell the outcomes apart.
type LearnedScorer struct {
	model  *Model
	logger zerolog.Logger
}

// NewLearnedScorer creates a scorer around a loaded model.
// A nil model yields a scorer that reports StatusUnavailable.
func NewLearnedScorer(model *Model, logger zerolog.Logger) *LearnedScorer {
	return &LearnedScorer{model: model, logger: logger}
}

// LoadLearnedScorer loads the model artifact at path and wraps it.
// A missing artifact is not an error: the scorer starts degraded.
func LoadLearnedScorer(path string, logger zerolog.Logger) (*LearnedScorer, error) {
	model, err := LoadModel(path)
	if err != nil {
		if err == ErrModelNotFound {
			logger.Warn().
				Str("path", path).
				Msg("model artifact missing, learned scorer degraded")
			return NewLearnedScorer(nil, logger), nil
		}
		return nil, fmt.Errorf("loading learned scorer: %w", err)
	}

	logger.Info().
		Str("path", path).
		Int("trees", len(model.Trees)).
		Msg("learned scorer loaded")
	return NewLearnedScorer(model, logger), nil
}

// Available reports whether a model artifact is loaded.
func (s *LearnedScorer) Available() bool {
	return s.model != nil
}

// Score evaluates a frame against the model.
// The raw decision value (positive means normal) is mapped into [0,1] via
// clip(0.5 - raw*2.5, 0, 1); the label follows the model's own binary
// classification of the raw value.
func (s *LearnedScorer) Score(frame SensorFrame) (result ScoreResult) {
	if s.model == nil {
		return ScoreResult{Score: 0.0, Label: LabelUnknown, Status: StatusUnavailable}
	}

	// Evaluation walks caller-influenced data through artifact-defined
	// trees; a malformed artifact must degrade, not crash the ingestion.
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().
				Str("vehicle_id", frame.VehicleID).
				Interface("panic", r).
				Msg("learned scorer fault")
			result = ScoreResult{
				Score:  0.0,
				Label:  LabelError,
				Status: StatusFaulted,
				Cause:  fmt.Errorf("model evaluation fault: %v", r),
			}
		}
	}()

	raw := s.model.Decision(FeatureVector(frame))

	label := LabelNormal
	if raw < 0 {
		label = LabelAnomaly
	}

	return ScoreResult{
		Score:  clip(0.5 - raw*2.5),
		Label:  label,
		Status: StatusOK,
	}
}
