// Package features turns raw quiz-session signals into the fixed-order
// numeric vector the proficiency classifier is trained on.
package features

import (
	"gonum.org/v1/gonum/stat"
)

// Dim is the length of a feature vector.
const Dim = 5

// Names lists the feature fields in training order.
var Names = [Dim]string{"score", "avg_time", "time_std", "replays", "difficulty"}

// Vector is the numeric encoding of one learner session.
// Field order matters: it is the column order of the training matrix.
type Vector struct {
	Score      float64 `json:"score"`      // fraction answered correctly, 0..1
	AvgTime    float64 `json:"avg_time"`   // mean seconds per question
	TimeStd    float64 `json:"time_std"`   // population std dev of seconds per question
	Replays    float64 `json:"replays"`    // video replay events
	Difficulty float64 `json:"difficulty"` // self-reported difficulty, 1..5
}

// Slice returns the fields in training order.
func (v Vector) Slice() []float64 {
	return []float64{v.Score, v.AvgTime, v.TimeStd, v.Replays, v.Difficulty}
}

// FromSlice builds a Vector from values in training order.
// It panics if len(x) != Dim.
func FromSlice(x []float64) Vector {
	if len(x) != Dim {
		panic("features: slice length mismatch")
	}
	return Vector{Score: x[0], AvgTime: x[1], TimeStd: x[2], Replays: x[3], Difficulty: x[4]}
}

// Featurize computes the feature vector for a session. An empty time series
// yields zero mean and zero deviation. Inputs are not clamped; range checks
// belong to the caller.
func Featurize(quizScore float64, timePerQuestion []float64, videoReplays int, perceivedDifficulty int) Vector {
	var avg, std float64
	if len(timePerQuestion) > 0 {
		avg, std = stat.PopMeanStdDev(timePerQuestion, nil)
	}
	return Vector{
		Score:      quizScore,
		AvgTime:    avg,
		TimeStd:    std,
		Replays:    float64(videoReplays),
		Difficulty: float64(perceivedDifficulty),
	}
}
