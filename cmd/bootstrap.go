package cmd

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/abhisek/pses/internal/config"
	"github.com/abhisek/pses/internal/metrics"
	"github.com/abhisek/pses/internal/model"
)

// initClassifier loads the persisted classifier or trains and persists a
// new one. It must run once, before any scoring.
func initClassifier(ctx context.Context, cfg config.Config, logger *zap.Logger, m *metrics.Metrics) (*model.Classifier, model.Outcome, error) {
	st := model.NewStore(cfg.Model.Path,
		model.WithSynthOptions(cfg.Model.Synth.Options()),
		model.WithFitOptions(cfg.Model.Fit),
		model.WithLogger(logger),
	)

	clf, out, err := st.LoadOrTrain(ctx)
	if err != nil {
		return nil, out, fmt.Errorf("initialize classifier: %w", err)
	}

	if m != nil {
		m.ModelInit.WithLabelValues(string(out.Source)).Inc()
		if out.Fit != nil {
			m.FitIterations.Set(float64(out.Fit.Iterations))
		}
	}
	return clf, out, nil
}
