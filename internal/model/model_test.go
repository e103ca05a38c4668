package model

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/abhisek/pses/internal/synth"
)

var (
	baselineOnce   sync.Once
	baselineClf    *Classifier
	baselineReport FitReport
	baselineErr    error
)

// baseline trains the default cold-start model once per test binary.
func baseline(t *testing.T) (*Classifier, FitReport) {
	t.Helper()
	baselineOnce.Do(func() {
		ds := synth.Generate(synth.DefaultSamples, synth.DefaultSeed)
		baselineClf, baselineReport, baselineErr = Fit(ds, DefaultFitOptions())
	})
	require.NoError(t, baselineErr)
	return baselineClf, baselineReport
}
