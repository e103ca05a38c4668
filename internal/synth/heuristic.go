package synth

import (
	"fmt"
	"math"

	"github.com/abhisek/pses/internal/features"
	"github.com/abhisek/pses/internal/level"
)

// Heuristic weights. Higher score, faster answers, fewer replays and lower
// perceived difficulty push a session towards Advanced.
const (
	weightScore      = 2.6
	weightAvgTime    = 0.006
	weightTimeStd    = 0.003
	weightReplays    = 0.18
	weightDifficulty = 0.10
	neutralDiff      = 3.0
)

// Heuristic returns the scalar proficiency score used to label synthetic data.
func Heuristic(v features.Vector) float64 {
	return weightScore*v.Score -
		weightAvgTime*v.AvgTime -
		weightTimeStd*v.TimeStd -
		weightReplays*v.Replays -
		weightDifficulty*(v.Difficulty-neutralDiff)
}

// Thresholds split the heuristic score into three contiguous intervals:
// (-inf, Intermediate] is Beginner, (Intermediate, Advanced] is Intermediate
// and (Advanced, +inf) is Advanced.
type Thresholds struct {
	Intermediate float64 `yaml:"intermediate"`
	Advanced     float64 `yaml:"advanced"`
}

// DefaultThresholds returns the baseline label boundaries.
func DefaultThresholds() Thresholds {
	return Thresholds{Intermediate: 0.45, Advanced: 1.25}
}

// Validate checks that the bounds are finite and strictly ordered.
func (t Thresholds) Validate() error {
	if math.IsNaN(t.Intermediate) || math.IsInf(t.Intermediate, 0) ||
		math.IsNaN(t.Advanced) || math.IsInf(t.Advanced, 0) {
		return fmt.Errorf("thresholds must be finite (got %v, %v)", t.Intermediate, t.Advanced)
	}
	if t.Intermediate >= t.Advanced {
		return fmt.Errorf("intermediate threshold %v must be below advanced threshold %v", t.Intermediate, t.Advanced)
	}
	return nil
}

// Label maps a heuristic score to a class. Boundary values fall to the lower class.
func (t Thresholds) Label(z float64) level.Level {
	switch {
	case z > t.Advanced:
		return level.Advanced
	case z > t.Intermediate:
		return level.Intermediate
	default:
		return level.Beginner
	}
}
