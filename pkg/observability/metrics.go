package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics handles application metrics and monitoring
type Metrics struct {
	mutations       *prometheus.CounterVec
	mutationLatency *prometheus.HistogramVec
	engineFailures  prometheus.Counter
	undoDepth       prometheus.Gauge
	nodesLive       prometheus.Gauge
	edgesLive       prometheus.Gauge
}

// NewMetrics creates a new metrics instance registered on the given registry
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "patchbay",
			Name:      "graph_mutations_total",
			Help:      "Count of graph store mutations by action and status.",
		}, []string{"action", "status"}),
		mutationLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "patchbay",
			Name:      "graph_mutation_duration_seconds",
			Help:      "Latency of graph store mutations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"action"}),
		engineFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "patchbay",
			Name:      "engine_failures_total",
			Help:      "Count of non-fatal native audio engine failures.",
		}),
		undoDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "patchbay",
			Name:      "history_undo_depth",
			Help:      "Current depth of the undo stack.",
		}),
		nodesLive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "patchbay",
			Name:      "graph_nodes",
			Help:      "Number of nodes currently in the canonical graph.",
		}),
		edgesLive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "patchbay",
			Name:      "graph_edges",
			Help:      "Number of edges currently in the canonical graph.",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.mutations,
			m.mutationLatency,
			m.engineFailures,
			m.undoDepth,
			m.nodesLive,
			m.edgesLive,
		)
	}

	return m
}

// RecordMutation records a graph store mutation
// Safe to call on a nil receiver so callers don't have to guard
func (m *Metrics) RecordMutation(action string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	m.mutations.WithLabelValues(action, status).Inc()
	m.mutationLatency.WithLabelValues(action).Observe(duration.Seconds())
}

// RecordEngineFailure records a degraded (non-fatal) engine operation
func (m *Metrics) RecordEngineFailure() {
	if m == nil {
		return
	}
	m.engineFailures.Inc()
}

// SetUndoDepth updates the undo stack depth gauge
func (m *Metrics) SetUndoDepth(depth int) {
	if m == nil {
		return
	}
	m.undoDepth.Set(float64(depth))
}

// SetGraphSize updates the live node and edge gauges
func (m *Metrics) SetGraphSize(nodes, edges int) {
	if m == nil {
		return
	}
	m.nodesLive.Set(float64(nodes))
	m.edgesLive.Set(float64(edges))
}
