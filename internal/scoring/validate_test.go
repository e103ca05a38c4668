package scoring

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestValidate(t *testing.T) {
	valid := Request{QuizScore: 0.5, TimePerQuestionSec: []float64{10, 0}, PerceivedDifficulty: 3}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name string
		mut  func(*Request)
		want string
	}{
		{"score above one", func(r *Request) { r.QuizScore = 1.01 }, "quizScore"},
		{"negative score", func(r *Request) { r.QuizScore = -0.1 }, "quizScore"},
		{"nan score", func(r *Request) { r.QuizScore = math.NaN() }, "quizScore"},
		{"negative time", func(r *Request) { r.TimePerQuestionSec = []float64{4, -1} }, "timePerQuestionSec[1]"},
		{"infinite time", func(r *Request) { r.TimePerQuestionSec = []float64{math.Inf(1)} }, "timePerQuestionSec[0]"},
		{"negative replays", func(r *Request) { r.VideoReplays = -1 }, "videoReplays"},
		{"difficulty zero", func(r *Request) { r.PerceivedDifficulty = 0 }, "perceivedDifficulty"},
		{"difficulty six", func(r *Request) { r.PerceivedDifficulty = 6 }, "perceivedDifficulty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid
			r.TimePerQuestionSec = append([]float64(nil), valid.TimePerQuestionSec...)
			tt.mut(&r)
			err := r.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRequestValidateReportsAll(t *testing.T) {
	r := Request{QuizScore: 2, VideoReplays: -1, PerceivedDifficulty: 9}
	err := r.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quizScore")
	assert.Contains(t, err.Error(), "videoReplays")
	assert.Contains(t, err.Error(), "perceivedDifficulty")
}
