package inference

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/abhisek/pses/internal/features"
	"github.com/abhisek/pses/internal/level"
)

type fixedPredictor []float64

func (f fixedPredictor) PredictProba(features.Vector) []float64 {
	return append([]float64(nil), f...)
}

func TestPredictLevel(t *testing.T) {
	tests := []struct {
		name     string
		proba    fixedPredictor
		wantLvl  level.Level
		wantConf float64
	}{
		{"beginner", fixedPredictor{0.7, 0.2, 0.1}, level.Beginner, 0.7},
		{"intermediate", fixedPredictor{0.1, 0.6, 0.3}, level.Intermediate, 0.6},
		{"advanced", fixedPredictor{0.05, 0.15, 0.8}, level.Advanced, 0.8},
		{"tie prefers lowest index", fixedPredictor{0.4, 0.4, 0.2}, level.Beginner, 0.4},
		{"tie upper classes", fixedPredictor{0.2, 0.4, 0.4}, level.Intermediate, 0.4},
		{"uniform", fixedPredictor{1.0 / 3, 1.0 / 3, 1.0 / 3}, level.Beginner, 1.0 / 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PredictLevel(tt.proba, features.Vector{})
			assert.Equal(t, tt.wantLvl, got.Level)
			assert.InDelta(t, tt.wantConf, got.Confidence, 1e-12)
			assert.Len(t, got.Probabilities, level.Count)
		})
	}
}

func TestPredictLevel_PanicsOnBadDistribution(t *testing.T) {
	assert.Panics(t, func() {
		PredictLevel(fixedPredictor{0.5, 0.5}, features.Vector{})
	})
}
