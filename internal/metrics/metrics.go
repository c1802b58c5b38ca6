// Package metrics holds the Prometheus collectors shared by the pipeline,
// the session and the engine bridge. They register with the default
// registry, which the app serves on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "circles"

var (
	// RebuildDuration measures one rebuild pass.
	RebuildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "pipeline",
		Name:      "rebuild_duration_seconds",
		Help:      "Duration of rebuild passes in seconds",
		Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
	})

	// FragmentsBuilt counts fragment constructions.
	// Labels: result (ok, unknown_operation)
	FragmentsBuilt = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "pipeline",
		Name:      "fragments_built_total",
		Help:      "Total fragments built for dirty nodes",
	}, []string{"result"})

	// Resequences counts rebuilds that re-derived the node sequence.
	Resequences = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "pipeline",
		Name:      "resequences_total",
		Help:      "Total re-derivations of the rank-ordered sequence",
	})

	// GraphNodes is the node count of the last composed graph.
	GraphNodes = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "graph",
		Name:      "nodes",
		Help:      "Nodes in the last composed graph",
	})

	// GraphBindings is the input binding count of the last composed graph.
	GraphBindings = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "graph",
		Name:      "bindings",
		Help:      "Input bindings in the last composed graph",
	})

	// Cycles counts edit cycles.
	// Labels: result (ok, error)
	Cycles = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "session",
		Name:      "cycles_total",
		Help:      "Total edit cycles",
	}, []string{"result"})

	// Published counts messages handed to the engine.
	// Labels: kind (graph, params)
	Published = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "bridge",
		Name:      "published_total",
		Help:      "Total messages published to the engine",
	}, []string{"kind"})

	// BridgeClients is the number of connected engine clients.
	BridgeClients = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "bridge",
		Name:      "clients",
		Help:      "Connected engine clients",
	})
)
