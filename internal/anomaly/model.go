package anomaly

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
)

// Model errors.
var (
	ErrModelNotFound = errors.New("model artifact not found")
	ErrModelInvalid  = errors.New("model artifact is invalid")
)

// FeatureOrder is the fixed-order feature vector the outlier model was
// trained on. The offline training job exports the same order in its
// artifact; LoadModel verifies they match.
var FeatureOrder = []string{
	ChannelVehicleSpeed,
	ChannelEngineRPM,
	ChannelCoolantTemp,
	ChannelOilTemp,
	ChannelBatteryVoltage,
	ChannelBrakeDiscTemp,
	ChannelVibrationRMS,
	ChannelTirePressure,
	ChannelHardBrakeEvents,
	ChannelDTCCount,
}

// treeNode is one node of an isolation tree. Leaf nodes have Left == -1.
type treeNode struct {
	// Feature is the index into the feature vector tested at this node.
	Feature int `json:"f"`

	// Threshold splits samples: <= goes left, > goes right.
	Threshold float64 `json:"t"`

	// Left and Right are child node indexes, -1 at a leaf.
	Left  int `json:"l"`
	Right int `json:"r"`

	// Size is the number of training samples that reached this node,
	// used to extend leaf path lengths.
	Size int `json:"n"`
}

// isolationTree is a single tree of the forest, nodes indexed from the root
// at position 0.
type isolationTree struct {
	Nodes []treeNode `json:"nodes"`
}

// Model is a pre-trained isolation forest loaded from the artifact the
// offline training job exports. Evaluation is pure and safe for concurrent
// use.
type Model struct {
	Features   []string        `json:"features"`
	NumSamples int             `json:"n_samples"`
	Offset     float64         `json:"offset"`
	Trees      []isolationTree `json:"trees"`
}

// LoadModel reads and validates a model artifact from disk.
// A missing file returns ErrModelNotFound so callers can degrade rather
// than fail.
func LoadModel(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrModelNotFound
		}
		return nil, fmt.Errorf("reading model artifact: %w", err)
	}

	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrModelInvalid, err.Error())
	}

	if len(m.Trees) == 0 || m.NumSamples < 2 {
		return nil, fmt.Errorf("%w: empty forest", ErrModelInvalid)
	}
	if len(m.Features) != len(FeatureOrder) {
		return nil, fmt.Errorf("%w: expected %d features, artifact has %d",
			ErrModelInvalid, len(FeatureOrder), len(m.Features))
	}
	for i, f := range m.Features {
		if f != FeatureOrder[i] {
			return nil, fmt.Errorf("%w: feature %d is %q, expected %q",
				ErrModelInvalid, i, f, FeatureOrder[i])
		}
	}

	return &m, nil
}

// FeatureVector extracts the model's fixed-order feature vector from a
// frame. Missing channels default to 0.0, matching the training job.
func FeatureVector(frame SensorFrame) []float64 {
	vec := make([]float64, len(FeatureOrder))
	for i, name := range FeatureOrder {
		if v, ok := frame.Channels[name]; ok {
			vec[i] = v
		}
	}
	return vec
}

// Decision returns the raw decision value for a feature vector.
// Positive means the forest considers the point normal, negative an
// outlier.
func (m *Model) Decision(vec []float64) float64 {
	var total float64
	for i := range m.Trees {
		total += m.Trees[i].pathLength(vec)
	}
	avgPath := total / float64(len(m.Trees))

	// Standard isolation-forest anomaly score in (0,1]; higher means
	// more anomalous.
	anomaly := math.Pow(2, -avgPath/averagePathLength(m.NumSamples))

	return -anomaly - m.Offset
}

// pathLength walks the tree for a vector and returns the depth reached,
// extended by the expected remaining depth at non-singleton leaves.
func (t *isolationTree) pathLength(vec []float64) float64 {
	depth := 0.0
	idx := 0
	for {
		node := t.Nodes[idx]
		if node.Left < 0 {
			return depth + averagePathLength(node.Size)
		}
		if vec[node.Feature] <= node.Threshold {
			idx = node.Left
		} else {
			idx = node.Right
		}
		depth++
	}
}

// eulerMascheroni is used in the average unsuccessful-search path length of
// a binary search tree.
const eulerMascheroni = 0.5772156649

// averagePathLength is c(n), the average path length of an unsuccessful
// BST search over n samples.
func averagePathLength(n int) float64 {
	switch {
	case n > 2:
		f := float64(n)
		return 2*(math.Log(f-1)+eulerMascheroni) - 2*(f-1)/f
	case n == 2:
		return 1
	default:
		return 0
	}
}
