// Package metrics registers the Prometheus collectors for the rating engine.
// All recording methods are safe on a nil *Metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the engine collectors and the registry they belong to.
type Metrics struct {
	registry           *prometheus.Registry
	judgments          *prometheus.CounterVec
	denialTransitions  *prometheus.CounterVec
	trophiesCommitted  prometheus.Counter
	evaluationDuration *prometheus.HistogramVec
	cacheLookups       *prometheus.CounterVec
}

// New creates a registry with process/Go collectors and the engine collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		judgments: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cliprank_judgments_total",
				Help: "Judgment mutations, by outcome.",
			},
			[]string{"outcome"},
		),
		denialTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cliprank_denial_transitions_total",
				Help: "Clip denial state changes, by direction.",
			},
			[]string{"direction"},
		),
		trophiesCommitted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cliprank_trophies_committed_total",
				Help: "Trophy records persisted.",
			},
		),
		evaluationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cliprank_criteria_evaluation_duration_seconds",
				Help:    "Duration of a single criterion evaluation, by criterion type.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"type"},
		),
		cacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cliprank_tally_cache_lookups_total",
				Help: "Tally cache lookups, by result.",
			},
			[]string{"result"},
		),
	}

	reg.MustRegister(
		m.judgments,
		m.denialTransitions,
		m.trophiesCommitted,
		m.evaluationDuration,
		m.cacheLookups,
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for gathering in tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// JudgmentRecorded counts a judgment mutation ("created", "replaced", "removed").
func (m *Metrics) JudgmentRecorded(outcome string) {
	if m == nil {
		return
	}
	m.judgments.WithLabelValues(outcome).Inc()
}

// DenialChanged counts a denial transition.
func (m *Metrics) DenialChanged(denied bool) {
	if m == nil {
		return
	}
	direction := "cleared"
	if denied {
		direction = "denied"
	}
	m.denialTransitions.WithLabelValues(direction).Inc()
}

// TrophiesCommitted adds n persisted trophy records.
func (m *Metrics) TrophiesCommitted(n int) {
	if m == nil || n == 0 {
		return
	}
	m.trophiesCommitted.Add(float64(n))
}

// ObserveEvaluation records how long a criterion evaluation took.
func (m *Metrics) ObserveEvaluation(criterionType string, started time.Time) {
	if m == nil {
		return
	}
	m.evaluationDuration.WithLabelValues(criterionType).Observe(time.Since(started).Seconds())
}

// CacheLookup counts a tally cache hit or miss.
func (m *Metrics) CacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}
