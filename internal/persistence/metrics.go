package persistence

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	writesQueued = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "voxelstream",
		Subsystem: "persistence",
		Name:      "writes_queued_total",
		Help:      "Writes accepted onto a store's async writer queue, by kind (snapshot|delta).",
	}, []string{"kind"})

	writesDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "voxelstream",
		Subsystem: "persistence",
		Name:      "writes_dropped_total",
		Help:      "Writes rejected because the writer queue was full, by kind.",
	}, []string{"kind"})

	writesFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "voxelstream",
		Subsystem: "persistence",
		Name:      "writes_failed_total",
		Help:      "Writes that reached the writer goroutine but failed to persist, by kind.",
	}, []string{"kind"})

	writeLatencySeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "voxelstream",
		Subsystem: "persistence",
		Name:      "write_latency_seconds",
		Help:      "Time spent encoding and atomically writing a record, by kind.",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12),
	}, []string{"kind"})

	loadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "voxelstream",
		Subsystem: "persistence",
		Name:      "loads_total",
		Help:      "Load attempts by kind and outcome (hit|miss|corrupted|size_mismatch).",
	}, []string{"kind", "outcome"})
)
