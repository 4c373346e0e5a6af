// Package metrics exposes Prometheus instrumentation for snapshot assembly
// and exports.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Fetch and assembly outcomes.
const (
	OutcomeSuccess  = "success"
	OutcomeError    = "error"
	OutcomeCanceled = "canceled"
	OutcomeStale    = "stale"
)

// Recorder owns a private registry so tests and multiple servers never
// collide on the global one. A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry         *prometheus.Registry
	fetches          *prometheus.CounterVec
	assembleDuration *prometheus.HistogramVec
	exports          *prometheus.CounterVec
	selections       *prometheus.CounterVec
}

// NewRecorder creates and registers all collectors.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "anticrisis",
			Name:      "fetch_total",
			Help:      "Backend fetches by section and outcome",
		}, []string{"section", "outcome"}),
		assembleDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "anticrisis",
			Name:      "assemble_duration_seconds",
			Help:      "Time spent assembling one period snapshot",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
		exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "anticrisis",
			Name:      "exports_total",
			Help:      "Snapshot exports by format",
		}, []string{"format"}),
		selections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "anticrisis",
			Name:      "selections_total",
			Help:      "Period selections by outcome",
		}, []string{"outcome"}),
	}
	r.registry.MustRegister(
		r.fetches, r.assembleDuration, r.exports, r.selections,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// ObserveFetch counts one backend fetch.
func (r *Recorder) ObserveFetch(section, outcome string) {
	if r == nil {
		return
	}
	r.fetches.WithLabelValues(section, outcome).Inc()
}

// ObserveAssemble records the duration of one assembly.
func (r *Recorder) ObserveAssemble(d time.Duration, outcome string) {
	if r == nil {
		return
	}
	r.assembleDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

// ObserveExport counts one export in the given format.
func (r *Recorder) ObserveExport(format string) {
	if r == nil {
		return
	}
	r.exports.WithLabelValues(format).Inc()
}

// ObserveSelection counts one period selection.
func (r *Recorder) ObserveSelection(outcome string) {
	if r == nil {
		return
	}
	r.selections.WithLabelValues(outcome).Inc()
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
