package anomaly_test

import (
	"testing"

	"github.com/aurafleet/aurafleet/internal/anomaly"
)

func TestFuse_Weights(t *testing.T) {
	tests := []struct {
		rule, learned, want float64
	}{
		{0, 0, 0},
		{1, 1, 1},
		{0.5, 0, 0.35},
		{0, 0.5, 0.15},
		{0.19, 0, 0.13},
		{1, 0, 0.7},
		{0, 1, 0.3},
	}

	for _, tt := range tests {
		if got := anomaly.Fuse(tt.rule, tt.learned); got != tt.want {
			t.Errorf("Fuse(%v, %v) = %v, want %v", tt.rule, tt.learned, got, tt.want)
		}
	}
}

func TestFuse_Monotonic(t *testing.T) {
	steps := []float64{0, 0.1, 0.25, 0.5, 0.75, 0.9, 1}

	for _, fixed := range steps {
		var prev float64 = -1
		for _, rule := range steps {
			got := anomaly.Fuse(rule, fixed)
			if got < prev {
				t.Errorf("Fuse(%v, %v) = %v decreased below %v", rule, fixed, got, prev)
			}
			prev = got
		}

		prev = -1
		for _, learned := range steps {
			got := anomaly.Fuse(fixed, learned)
			if got < prev {
				t.Errorf("Fuse(%v, %v) = %v decreased below %v", fixed, learned, got, prev)
			}
			prev = got
		}
	}
}

func TestFuse_Bounded(t *testing.T) {
	for _, rule := range []float64{0, 0.33, 0.87, 1} {
		for _, learned := range []float64{0, 0.5, 1} {
			got := anomaly.Fuse(rule, learned)
			if got < 0 || got > 1 {
				t.Errorf("Fuse(%v, %v) = %v out of [0,1]", rule, learned, got)
			}
		}
	}
}
