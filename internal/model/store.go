package model

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/pses/internal/synth"
)

// Source tells how the classifier was obtained.
type Source string

const (
	SourceLoaded  Source = "loaded"
	SourceTrained Source = "trained"
)

// Outcome describes a LoadOrTrain call.
type Outcome struct {
	Source   Source
	Path     string
	Fit      *FitReport // nil when loaded
	Duration time.Duration
}

// Store owns the model artifact location and the cold-start policy.
type Store struct {
	path   string
	synth  synth.Options
	fit    FitOptions
	logger *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithSynthOptions overrides the synthetic dataset used on cold start.
func WithSynthOptions(o synth.Options) Option {
	return func(s *Store) { s.synth = o }
}

// WithFitOptions overrides the training settings used on cold start.
func WithFitOptions(o FitOptions) Option {
	return func(s *Store) { s.fit = o }
}

// WithLogger sets the logger. Default: no-op.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// NewStore creates a Store for the artifact at path.
func NewStore(path string, opts ...Option) *Store {
	s := &Store{
		path:   path,
		synth:  synth.DefaultOptions(),
		fit:    DefaultFitOptions(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the artifact location.
func (s *Store) Path() string { return s.path }

// LoadOrTrain returns the persisted classifier if the artifact exists.
// Otherwise it trains one on synthetic data, persists it and returns it.
// Once written, the artifact is reused as is by every later call.
func (s *Store) LoadOrTrain(ctx context.Context) (*Classifier, Outcome, error) {
	start := time.Now()
	out := Outcome{Path: s.path}

	exists, err := Exists(s.path)
	if err != nil {
		return nil, out, err
	}

	if exists {
		clf, err := Load(s.path)
		if err != nil {
			return nil, out, err
		}
		out.Source = SourceLoaded
		out.Duration = time.Since(start)
		s.logger.Info("model loaded",
			zap.String("path", s.path),
			zap.Time("trained_at", clf.meta.TrainedAt),
			zap.Duration("took", out.Duration))
		return clf, out, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, out, err
	}

	clf, report, err := s.train()
	if err != nil {
		return nil, out, err
	}

	if err := Save(s.path, clf); err != nil {
		return nil, out, err
	}

	out.Source = SourceTrained
	out.Fit = &report
	out.Duration = time.Since(start)
	s.logger.Info("model trained and persisted",
		zap.String("path", s.path),
		zap.Int("samples", clf.meta.Samples),
		zap.Int("iterations", report.Iterations),
		zap.Float64("loss", report.Loss),
		zap.Bool("converged", report.Converged),
		zap.Duration("took", out.Duration))
	return clf, out, nil
}

func (s *Store) train() (*Classifier, FitReport, error) {
	if err := s.synth.Thresholds.Validate(); err != nil {
		return nil, FitReport{}, fmt.Errorf("synthetic thresholds: %w", err)
	}

	ds := synth.GenerateOptions(s.synth)
	counts := ds.Counts()
	s.logger.Info("generated synthetic training set",
		zap.Int("samples", ds.Len()),
		zap.Uint64("seed", s.synth.Seed),
		zap.Ints("class_counts", counts[:]))

	clf, report, err := Fit(ds, s.fit)
	if err != nil {
		return nil, report, fmt.Errorf("fit classifier: %w", err)
	}
	if !report.Converged {
		s.logger.Warn("optimizer stopped before convergence; using best-effort fit",
			zap.String("status", report.Status),
			zap.Int("iterations", report.Iterations))
	}
	clf.meta.Seed = s.synth.Seed
	return clf, report, nil
}
