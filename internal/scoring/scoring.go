// Package scoring is the entry point the host calls for each quiz session:
// it featurizes the raw signals, runs inference on the shared classifier and
// optionally records the outcome.
package scoring

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/pses/internal/features"
	"github.com/abhisek/pses/internal/inference"
	"github.com/abhisek/pses/internal/metrics"
	"github.com/abhisek/pses/internal/store"
)

// Request holds the raw session signals. Callers validate ranges before
// calling Score.
type Request struct {
	UserID              string    `json:"userId,omitempty"`
	QuizScore           float64   `json:"quizScore"`
	TimePerQuestionSec  []float64 `json:"timePerQuestionSec"`
	VideoReplays        int       `json:"videoReplays"`
	PerceivedDifficulty int       `json:"perceivedDifficulty"`
}

// FeatureView is the feature vector as reported back to clients.
type FeatureView struct {
	QuizScore           float64 `json:"quizScore"`
	AvgTimeSec          float64 `json:"avgTimeSec"`
	TimeStdSec          float64 `json:"timeStdSec"`
	VideoReplays        float64 `json:"videoReplays"`
	PerceivedDifficulty float64 `json:"perceivedDifficulty"`
}

// Response is the result of scoring one session.
type Response struct {
	Level      string      `json:"level"`
	Confidence float64     `json:"confidence"`
	Features   FeatureView `json:"features"`

	// Probabilities are indexed by level and kept off the wire.
	Probabilities []float64 `json:"-"`
}

// Recorder persists prediction events. store.PredictionRepo implements it.
type Recorder interface {
	Append(ctx context.Context, ev *store.PredictionEvent) error
}

// Service scores sessions against a single immutable classifier.
// It is safe for concurrent use.
type Service struct {
	predictor inference.Predictor
	recorder  Recorder
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithRecorder records every prediction.
func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithMetrics reports predictions to m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLogger sets the logger. Default: no-op.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService creates a Service around an initialized classifier.
func NewService(p inference.Predictor, opts ...Option) *Service {
	s := &Service{predictor: p, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score featurizes req and predicts its proficiency level.
func (s *Service) Score(ctx context.Context, req Request) (*Response, error) {
	v := features.Featurize(req.QuizScore, req.TimePerQuestionSec, req.VideoReplays, req.PerceivedDifficulty)
	res := inference.PredictLevel(s.predictor, v)

	if s.metrics != nil {
		s.metrics.ObservePrediction(res.Level, res.Confidence)
	}

	if s.recorder != nil {
		ev := &store.PredictionEvent{
			Timestamp:  time.Now().UTC(),
			UserID:     req.UserID,
			Features:   v,
			Level:      res.Level,
			Confidence: res.Confidence,
		}
		// History is best effort; a failed write never fails the score.
		if err := s.recorder.Append(ctx, ev); err != nil {
			s.logger.Warn("failed to record prediction", zap.String("user_id", req.UserID), zap.Error(err))
		}
	}

	s.logger.Debug("scored session",
		zap.String("user_id", req.UserID),
		zap.String("level", res.Level.String()),
		zap.Float64("confidence", res.Confidence))

	return &Response{
		Level:      res.Level.String(),
		Confidence: res.Confidence,
		Features:   FeatureViewOf(v),

		Probabilities: res.Probabilities,
	}, nil
}

// FeatureViewOf converts a feature vector to its client-facing form.
func FeatureViewOf(v features.Vector) FeatureView {
	return FeatureView{
		QuizScore:           v.Score,
		AvgTimeSec:          v.AvgTime,
		TimeStdSec:          v.TimeStd,
		VideoReplays:        v.Replays,
		PerceivedDifficulty: v.Difficulty,
	}
}
