package scoring

import (
	"errors"
	"fmt"
	"math"
)

// Accepted input ranges.
const (
	MinDifficulty = 1
	MaxDifficulty = 5
)

// Validate reports every out-of-range field of r. The HTTP transport
// validates against a JSON schema instead; the CLI uses this.
func (r Request) Validate() error {
	var errs []error
	if math.IsNaN(r.QuizScore) || r.QuizScore < 0 || r.QuizScore > 1 {
		errs = append(errs, fmt.Errorf("quizScore must be within [0, 1], got %v", r.QuizScore))
	}
	for i, t := range r.TimePerQuestionSec {
		if math.IsNaN(t) || math.IsInf(t, 0) || t < 0 {
			errs = append(errs, fmt.Errorf("timePerQuestionSec[%d] must be a non-negative number, got %v", i, t))
		}
	}
	if r.VideoReplays < 0 {
		errs = append(errs, fmt.Errorf("videoReplays must be >= 0, got %d", r.VideoReplays))
	}
	if r.PerceivedDifficulty < MinDifficulty || r.PerceivedDifficulty > MaxDifficulty {
		errs = append(errs, fmt.Errorf("perceivedDifficulty must be within [%d, %d], got %d",
			MinDifficulty, MaxDifficulty, r.PerceivedDifficulty))
	}
	return errors.Join(errs...)
}
