// Package model holds the multinomial logistic regression classifier that
// maps a session feature vector to a distribution over proficiency levels,
// along with its training and load-or-train persistence.
package model

import (
	"math"
	"time"

	"github.com/abhisek/pses/internal/features"
	"github.com/abhisek/pses/internal/level"
)

// Metadata describes how a classifier was produced.
type Metadata struct {
	TrainedAt  time.Time `json:"trained_at"`
	Samples    int       `json:"samples"`
	Seed       uint64    `json:"seed"`
	Iterations int       `json:"iterations"`
	Converged  bool      `json:"converged"`
}

// Classifier is a trained softmax regression over standardized features.
// It is never mutated after construction, so concurrent readers need no locking.
type Classifier struct {
	mean      [features.Dim]float64
	scale     [features.Dim]float64
	coef      [level.Count][features.Dim]float64
	intercept [level.Count]float64
	meta      Metadata
}

// Metadata returns the training metadata.
func (c *Classifier) Metadata() Metadata {
	return c.meta
}

// PredictProba returns the probability of each level, indexed by class.
func (c *Classifier) PredictProba(v features.Vector) []float64 {
	x := c.standardize(v.Slice())
	scores := make([]float64, level.Count)
	for k := range scores {
		s := c.intercept[k]
		for j, xj := range x {
			s += c.coef[k][j] * xj
		}
		scores[k] = s
	}
	softmax(scores)
	return scores
}

func (c *Classifier) standardize(x []float64) []float64 {
	out := make([]float64, len(x))
	for j, xj := range x {
		out[j] = (xj - c.mean[j]) / c.scale[j]
	}
	return out
}

// softmax converts scores to probabilities in place.
func softmax(scores []float64) {
	maxScore := math.Inf(-1)
	for _, s := range scores {
		if s > maxScore {
			maxScore = s
		}
	}
	var sum float64
	for i, s := range scores {
		e := math.Exp(s - maxScore)
		scores[i] = e
		sum += e
	}
	for i := range scores {
		scores[i] /= sum
	}
}
