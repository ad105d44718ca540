// Package metrics exports print session counters to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"

	"github.com/ajkula/GoBatchPrint/domain/model"
	"github.com/ajkula/GoBatchPrint/domain/port/outbound"
)

// Prometheus metric names.
const (
	MetricSessionsTotal          = "batchprint_sessions_total"
	MetricSubmissionsTotal       = "batchprint_submissions_total"
	MetricDispatchDurationSecond = "batchprint_dispatch_duration_seconds"
)

// PrometheusRecorder implements outbound.MetricsRecorder on a private registry.
//
// Thread Safety: Safe for concurrent use by multiple goroutines.
type PrometheusRecorder struct {
	registry         *prometheus.Registry
	sessionsTotal    *prometheus.CounterVec
	submissionsTotal *prometheus.CounterVec
	dispatchDuration prometheus.Histogram
}

func NewPrometheusRecorder() *PrometheusRecorder {
	// own registry so tests and embedders never collide on the default one
	registry := prometheus.NewRegistry()

	r := &PrometheusRecorder{
		registry: registry,
		sessionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricSessionsTotal,
				Help: "Print sessions started, by outcome.",
			},
			[]string{"outcome"},
		),
		submissionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricSubmissionsTotal,
				Help: "Per-file print submissions, by status.",
			},
			[]string{"status"},
		),
		dispatchDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    MetricDispatchDurationSecond,
				Help:    "Wall time of a whole dispatch batch.",
				Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
			},
		),
	}

	registry.MustRegister(
		r.sessionsTotal,
		r.submissionsTotal,
		r.dispatchDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// expose every label value from the first scrape
	for _, o := range []model.SessionOutcome{model.OutcomeNoFiles, model.OutcomeDispatched} {
		r.sessionsTotal.WithLabelValues(string(o))
	}
	for _, s := range []model.ResultStatus{model.ResultSuccess, model.ResultFailure, model.ResultSkipped} {
		r.submissionsTotal.WithLabelValues(string(s))
	}

	return r
}

func (r *PrometheusRecorder) RecordSession(outcome model.SessionOutcome) {
	r.sessionsTotal.WithLabelValues(string(outcome)).Inc()
}

func (r *PrometheusRecorder) RecordSubmission(status model.ResultStatus) {
	r.submissionsTotal.WithLabelValues(string(status)).Inc()
}

func (r *PrometheusRecorder) ObserveDispatch(elapsed time.Duration) {
	r.dispatchDuration.Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus text format
func (r *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// Gather collects all metrics from the registry (for testing).
func (r *PrometheusRecorder) Gather() ([]*dto.MetricFamily, error) {
	return r.registry.Gather()
}

// NoopRecorder discards everything; used when monitoring is disabled
type NoopRecorder struct{}

func (NoopRecorder) RecordSession(model.SessionOutcome)  {}
func (NoopRecorder) RecordSubmission(model.ResultStatus) {}
func (NoopRecorder) ObserveDispatch(time.Duration)       {}

var (
	_ outbound.MetricsRecorder = (*PrometheusRecorder)(nil)
	_ outbound.MetricsRecorder = NoopRecorder{}
)
