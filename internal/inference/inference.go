// Package inference turns classifier probabilities into a proficiency level
// and a confidence score.
package inference

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/abhisek/pses/internal/features"
	"github.com/abhisek/pses/internal/level"
)

// Predictor yields a probability per proficiency level, indexed by class.
// *model.Classifier implements it.
type Predictor interface {
	PredictProba(v features.Vector) []float64
}

// Result is a single prediction.
type Result struct {
	Level         level.Level
	Confidence    float64   // probability of Level, 0..1
	Probabilities []float64 // full distribution, indexed by class
}

// PredictLevel picks the most probable level for v. Ties go to the lowest
// class index. A malformed distribution from the predictor is a programming
// error and panics.
func PredictLevel(p Predictor, v features.Vector) Result {
	proba := p.PredictProba(v)
	if len(proba) != level.Count {
		panic(fmt.Sprintf("inference: predictor returned %d probabilities, want %d", len(proba), level.Count))
	}
	idx := floats.MaxIdx(proba)
	return Result{
		Level:         level.Level(idx),
		Confidence:    proba[idx],
		Probabilities: proba,
	}
}
