package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// rebuildTotal counts full dive list rebuilds.
	rebuildTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "divelog_rebuild_total",
		Help: "Total dive list rebuilds",
	})

	rebuildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "divelog_rebuild_duration_seconds",
		Help:    "Dive list rebuild duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14), // 0.1ms to ~0.8s
	})

	diveCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "divelog_dives",
		Help: "Dives in the loaded logbook",
	})

	tripCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "divelog_trips",
		Help: "Trips produced by the last rebuild",
	})

	selectedCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "divelog_selected_dives",
		Help: "Dives currently selected",
	})

	// selectionChanges counts reported row changes by row kind.
	selectionChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "divelog_selection_changes_total",
		Help: "Selection changes reported by the interaction layer",
	}, []string{"kind"})

	// storeErrors counts failed repository calls by operation.
	storeErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "divelog_store_errors_total",
		Help: "Failed logbook store operations",
	}, []string{"operation"})
)
