// Package telemetry exposes benchmark progress as Prometheus metrics.
package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeSkip    = "skip"
	OutcomeFailure = "failure"
)

// Metrics holds the collectors for one run. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry *prometheus.Registry

	Operations *prometheus.CounterVec
	Duration   *prometheus.HistogramVec
	Bytes      *prometheus.CounterVec
	Backoffs   prometheus.Counter
	Workers    *prometheus.GaugeVec
}

// NewMetrics creates and registers the collectors on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "putgetbench",
				Name:      "operations_total",
				Help:      "Storage operations attempted, by outcome.",
			},
			[]string{"op", "outcome"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "putgetbench",
				Name:      "operation_duration_seconds",
				Help:      "Latency of successful storage operations.",
				// 1ms .. ~65s
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 17),
			},
			[]string{"op"},
		),
		Bytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "putgetbench",
				Name:      "bytes_total",
				Help:      "Payload bytes transferred by successful operations.",
			},
			[]string{"op"},
		),
		Backoffs: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "putgetbench",
				Name:      "empty_listing_backoffs_total",
				Help:      "Backoff sleeps caused by empty listings.",
			},
		),
		Workers: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "putgetbench",
				Name:      "active_workers",
				Help:      "Workers currently running.",
			},
			[]string{"op"},
		),
	}
	m.registry.MustRegister(m.Operations, m.Duration, m.Bytes, m.Backoffs, m.Workers)
	return m
}

// Observe records the outcome of one attempt. d and bytes are only used for
// successful attempts.
func (m *Metrics) Observe(op, outcome string, d time.Duration, bytes int64) {
	if m == nil {
		return
	}
	m.Operations.WithLabelValues(op, outcome).Inc()
	if outcome == OutcomeSuccess {
		m.Duration.WithLabelValues(op).Observe(d.Seconds())
		m.Bytes.WithLabelValues(op).Add(float64(bytes))
	}
}

// Backoff counts one empty-listing backoff.
func (m *Metrics) Backoff() {
	if m == nil {
		return
	}
	m.Backoffs.Inc()
}

// WorkerStarted and WorkerStopped track the running worker gauge.
func (m *Metrics) WorkerStarted(op string) {
	if m == nil {
		return
	}
	m.Workers.WithLabelValues(op).Inc()
}

func (m *Metrics) WorkerStopped(op string) {
	if m == nil {
		return
	}
	m.Workers.WithLabelValues(op).Dec()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until the server fails.
func (m *Metrics) Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return srv.ListenAndServe()
}
