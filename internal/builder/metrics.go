package builder

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeLabel = "outcome"

	taskOutcomeCompleted = "completed"
	taskOutcomeCancelled = "cancelled"
	taskOutcomeFailed    = "failed"
)

var (
	taskQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "chunk_builder_queue_depth",
		Help: "The number of build tasks waiting for a worker.",
	})

	taskCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chunk_builder_tasks",
		Help: "The number of build tasks that left the builder, by outcome.",
	}, []string{
		outcomeLabel,
	})

	taskDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "chunk_builder_task_duration",
		Help:    "The time spent executing a build task.",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14),
	}, []string{
		outcomeLabel,
	})
)

func instrumentQueueDepth(n int) {
	taskQueueDepth.Set(float64(n))
}

func instrumentTask(outcome string, d time.Duration) {
	labels := prometheus.Labels{outcomeLabel: outcome}
	taskCount.With(labels).Inc()
	taskDuration.With(labels).Observe(d.Seconds())
}
