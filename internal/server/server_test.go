package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/pses/internal/config"
	"github.com/abhisek/pses/internal/features"
	"github.com/abhisek/pses/internal/metrics"
	"github.com/abhisek/pses/internal/scoring"
	"github.com/abhisek/pses/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fixedPredictor returns the same distribution for every input.
type fixedPredictor []float64

func (f fixedPredictor) PredictProba(features.Vector) []float64 {
	return append([]float64(nil), f...)
}

type panicPredictor struct{}

func (panicPredictor) PredictProba(features.Vector) []float64 {
	panic("boom")
}

type testEnv struct {
	srv     *Server
	history store.PredictionRepo
	metrics *metrics.Metrics
}

func newTestEnv(t *testing.T, cfg config.ServerConfig, withHistory bool) *testEnv {
	t.Helper()
	env := &testEnv{metrics: metrics.New()}

	opts := []scoring.Option{scoring.WithMetrics(env.metrics)}
	if withHistory {
		st, err := store.Open(filepath.Join(t.TempDir(), "history.db"))
		require.NoError(t, err)
		t.Cleanup(func() { st.Close() })
		env.history = st.PredictionRepo()
		opts = append(opts, scoring.WithRecorder(env.history))
	}

	scorer := scoring.NewService(fixedPredictor{0.1, 0.2, 0.7}, opts...)
	env.srv = New(cfg, Options{
		Scorer:  scorer,
		History: env.history,
		Metrics: env.metrics,
	})
	return env
}

func defaultServerConfig() config.ServerConfig {
	return config.DefaultConfig().Server
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, defaultServerConfig(), false)
	rec := do(t, env.srv.Handler(), "GET", "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	decode(t, rec, &body)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "pses-ml", body["service"])
}

func TestPredict_OK(t *testing.T) {
	env := newTestEnv(t, defaultServerConfig(), false)
	rec := do(t, env.srv.Handler(), "POST", "/predict",
		`{"quizScore":0.95,"timePerQuestionSec":[10,12,11],"videoReplays":0,"perceivedDifficulty":1}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp scoring.Response
	decode(t, rec, &resp)
	assert.Equal(t, "Advanced", resp.Level)
	assert.InDelta(t, 0.7, resp.Confidence, 1e-12)
	assert.InDelta(t, 11.0, resp.Features.AvgTimeSec, 1e-9)
	assert.Equal(t, 1.0, resp.Features.PerceivedDifficulty)
}

func TestPredict_Defaults(t *testing.T) {
	env := newTestEnv(t, defaultServerConfig(), false)
	rec := do(t, env.srv.Handler(), "POST", "/predict", `{"quizScore":0.6}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp scoring.Response
	decode(t, rec, &resp)
	assert.Equal(t, scoring.FeatureView{
		QuizScore:           0.6,
		AvgTimeSec:          0,
		TimeStdSec:          0,
		VideoReplays:        0,
		PerceivedDifficulty: 3,
	}, resp.Features)
}

func TestPredict_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"quizScore":`},
		{"empty body", ``},
		{"missing quizScore", `{"videoReplays":1}`},
		{"quizScore above 1", `{"quizScore":1.5}`},
		{"quizScore negative", `{"quizScore":-0.1}`},
		{"quizScore string", `{"quizScore":"high"}`},
		{"negative replays", `{"quizScore":0.5,"videoReplays":-1}`},
		{"fractional replays", `{"quizScore":0.5,"videoReplays":1.5}`},
		{"difficulty too low", `{"quizScore":0.5,"perceivedDifficulty":0}`},
		{"difficulty too high", `{"quizScore":0.5,"perceivedDifficulty":6}`},
		{"negative time", `{"quizScore":0.5,"timePerQuestionSec":[3,-1]}`},
		{"times not array", `{"quizScore":0.5,"timePerQuestionSec":12}`},
		{"not an object", `[0.5]`},
	}
	env := newTestEnv(t, defaultServerConfig(), false)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, env.srv.Handler(), "POST", "/predict", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

			var body map[string]any
			decode(t, rec, &body)
			assert.Equal(t, "invalid request", body["error"])
			assert.NotEmpty(t, body["details"])
		})
	}
}

func TestPredict_BodyTooLarge(t *testing.T) {
	env := newTestEnv(t, defaultServerConfig(), false)
	body := `{"quizScore":0.5,"userId":"` + strings.Repeat("x", maxPredictBodyBytes) + `"}`

	rec := do(t, env.srv.Handler(), "POST", "/predict", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp map[string]any
	decode(t, rec, &resp)
	assert.Equal(t, "invalid request", resp["error"])
	assert.Contains(t, resp["details"], "exceeds")
}

func TestPredict_PanicBecomes500(t *testing.T) {
	scorer := scoring.NewService(panicPredictor{})
	srv := New(defaultServerConfig(), Options{Scorer: scorer})

	rec := do(t, srv.Handler(), "POST", "/predict", `{"quizScore":0.5}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHistoryRoutes(t *testing.T) {
	env := newTestEnv(t, defaultServerConfig(), true)
	h := env.srv.Handler()

	for i := 0; i < 3; i++ {
		rec := do(t, h, "POST", "/predict", `{"quizScore":0.9,"userId":"alice"}`)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec := do(t, h, "POST", "/predict", `{"quizScore":0.3,"userId":"bob"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	t.Run("user level", func(t *testing.T) {
		rec := do(t, h, "GET", "/users/alice/level", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var view predictionView
		decode(t, rec, &view)
		assert.Equal(t, "alice", view.UserID)
		assert.Equal(t, "Advanced", view.Level)
		assert.Equal(t, int64(3), view.Sequence)
		assert.Equal(t, 0.9, view.Features.QuizScore)
	})

	t.Run("unknown user", func(t *testing.T) {
		rec := do(t, h, "GET", "/users/carol/level", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("list all", func(t *testing.T) {
		rec := do(t, h, "GET", "/predictions", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Predictions []predictionView `json:"predictions"`
		}
		decode(t, rec, &body)
		require.Len(t, body.Predictions, 4)
		assert.Equal(t, "bob", body.Predictions[0].UserID)
	})

	t.Run("list filtered", func(t *testing.T) {
		rec := do(t, h, "GET", "/predictions?userId=alice&limit=2", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Predictions []predictionView `json:"predictions"`
		}
		decode(t, rec, &body)
		require.Len(t, body.Predictions, 2)
		for _, p := range body.Predictions {
			assert.Equal(t, "alice", p.UserID)
		}
	})

	t.Run("bad limit", func(t *testing.T) {
		rec := do(t, h, "GET", "/predictions?limit=zero", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHistoryDisabled(t *testing.T) {
	env := newTestEnv(t, defaultServerConfig(), false)
	assert.Equal(t, http.StatusNotImplemented, do(t, env.srv.Handler(), "GET", "/predictions", "").Code)
	assert.Equal(t, http.StatusNotImplemented, do(t, env.srv.Handler(), "GET", "/users/x/level", "").Code)
}

func TestRateLimit(t *testing.T) {
	cfg := defaultServerConfig()
	cfg.RateLimit = 0.001
	cfg.RateBurst = 1
	env := newTestEnv(t, cfg, false)
	h := env.srv.Handler()

	assert.Equal(t, http.StatusOK, do(t, h, "POST", "/predict", `{"quizScore":0.5}`).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(t, h, "POST", "/predict", `{"quizScore":0.5}`).Code)

	// Health is not limited.
	assert.Equal(t, http.StatusOK, do(t, h, "GET", "/health", "").Code)
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t, defaultServerConfig(), false)

	req := httptest.NewRequest("OPTIONS", "/predict", nil)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	env.srv.Handler().ServeHTTP(rec, req)

	assert.Less(t, rec.Code, 300)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsRoute(t *testing.T) {
	env := newTestEnv(t, defaultServerConfig(), false)
	h := env.srv.Handler()

	require.Equal(t, http.StatusOK, do(t, h, "POST", "/predict", `{"quizScore":0.5}`).Code)

	rec := do(t, h, "GET", "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `pses_predictions_total{level="Advanced"} 1`)
	assert.Contains(t, rec.Body.String(), `pses_http_requests_total{code="200",route="/predict"} 1`)
}

func TestRun_StopsOnCancel(t *testing.T) {
	cfg := defaultServerConfig()
	cfg.Addr = "127.0.0.1:0"
	env := newTestEnv(t, cfg, false)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- env.srv.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestRun_ListenError(t *testing.T) {
	cfg := defaultServerConfig()
	cfg.Addr = "256.0.0.1:bad"
	env := newTestEnv(t, cfg, false)

	err := env.srv.Run(context.Background())
	assert.Error(t, err)
}
