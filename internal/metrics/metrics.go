package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the draw engine's Prometheus collectors. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	draws               *prometheus.CounterVec
	winners             *prometheus.CounterVec
	exhausted           *prometheus.CounterVec
	persistenceFailures prometheus.Counter
	resets              prometheus.Counter
	available           *prometheus.GaugeVec
}

// New creates the collectors and registers them on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		draws: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "luckydraw",
				Subsystem: "engine",
				Name:      "draws_total",
				Help:      "Total number of committed draws.",
			},
			[]string{"tier"},
		),
		winners: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "luckydraw",
				Subsystem: "engine",
				Name:      "winners_total",
				Help:      "Total number of winners awarded.",
			},
			[]string{"tier"},
		),
		exhausted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "luckydraw",
				Subsystem: "engine",
				Name:      "exhausted_total",
				Help:      "Draw requests rejected because the tier had no participants left.",
			},
			[]string{"tier"},
		),
		persistenceFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "luckydraw",
				Subsystem: "storage",
				Name:      "failures_total",
				Help:      "Ledger reads and writes that failed.",
			},
		),
		resets: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "luckydraw",
				Subsystem: "engine",
				Name:      "resets_total",
				Help:      "Total number of session resets.",
			},
		),
		available: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "luckydraw",
				Subsystem: "engine",
				Name:      "available_participants",
				Help:      "Participants still available per tier.",
			},
			[]string{"tier"},
		),
	}

	m.registry.MustRegister(
		m.draws,
		m.winners,
		m.exhausted,
		m.persistenceFailures,
		m.resets,
		m.available,
	)
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) RecordDraw(tier string, winners int) {
	if m == nil {
		return
	}
	m.draws.WithLabelValues(tier).Inc()
	m.winners.WithLabelValues(tier).Add(float64(winners))
}

func (m *Metrics) RecordExhausted(tier string) {
	if m == nil {
		return
	}
	m.exhausted.WithLabelValues(tier).Inc()
}

func (m *Metrics) RecordPersistenceFailure() {
	if m == nil {
		return
	}
	m.persistenceFailures.Inc()
}

func (m *Metrics) RecordReset() {
	if m == nil {
		return
	}
	m.resets.Inc()
}

func (m *Metrics) SetAvailable(tier string, n int) {
	if m == nil {
		return
	}
	m.available.WithLabelValues(tier).Set(float64(n))
}
