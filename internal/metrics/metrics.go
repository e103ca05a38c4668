// Package metrics exposes Prometheus collectors for the scoring service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/abhisek/pses/internal/level"
)

const namespace = "pses"

// Metrics holds the service collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	Predictions   *prometheus.CounterVec
	Confidence    prometheus.Histogram
	ModelInit     *prometheus.CounterVec
	FitIterations prometheus.Gauge
	Requests      *prometheus.CounterVec
}

// New creates and registers the collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "predictions_total",
			Help:      "Predictions served, by proficiency level.",
		}, []string{"level"}),
		Confidence: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "prediction_confidence",
			Help:      "Probability assigned to the predicted level.",
			Buckets:   prometheus.LinearBuckets(0.1, 0.1, 10),
		}),
		ModelInit: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_init_total",
			Help:      "Classifier initializations, by source (loaded or trained).",
		}, []string{"source"}),
		FitIterations: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "model_fit_iterations",
			Help:      "Optimizer iterations used by the last cold-start fit.",
		}),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests, by route and status code.",
		}, []string{"route", "code"}),
	}

	m.registry.MustRegister(
		m.Predictions,
		m.Confidence,
		m.ModelInit,
		m.FitIterations,
		m.Requests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// Pre-create level series so dashboards see zeros.
	for _, l := range level.All() {
		m.Predictions.WithLabelValues(l.String())
	}
	return m
}

// ObservePrediction records one served prediction.
func (m *Metrics) ObservePrediction(l level.Level, confidence float64) {
	m.Predictions.WithLabelValues(l.String()).Inc()
	m.Confidence.Observe(confidence)
}

// Registry returns the private registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
