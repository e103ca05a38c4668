package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/pses/internal/level"
)

func TestObservePrediction(t *testing.T) {
	m := New()
	m.ObservePrediction(level.Advanced, 0.9)
	m.ObservePrediction(level.Advanced, 0.8)
	m.ObservePrediction(level.Beginner, 0.6)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Predictions.WithLabelValues("Advanced")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Predictions.WithLabelValues("Beginner")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Predictions.WithLabelValues("Intermediate")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.ModelInit.WithLabelValues("trained").Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `pses_model_init_total{source="trained"} 1`)
	assert.Contains(t, string(body), "pses_predictions_total")
}
