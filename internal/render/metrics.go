package render

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"sectionrender/internal/section"
)

const (
	resultApplied   = "applied"
	resultDiscarded = "discarded"
)

var (
	traversalDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "section_graph_traversal_duration",
		Help:    "The time spent walking the section graph.",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14),
	})

	sectionCount = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "sections",
		Help: "The number of sections, by state.",
	}, []string{
		"state",
	})

	buildsSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "section_builds_submitted",
		Help: "The number of build tasks submitted, by update kind.",
	}, []string{
		"kind",
	})

	buildResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "section_build_results",
		Help: "The number of build results received, by outcome.",
	}, []string{
		"outcome",
	})
)

func instrumentTraversal(d time.Duration, reached, rendered int) {
	traversalDuration.Observe(d.Seconds())
	sectionCount.WithLabelValues("reached").Set(float64(reached))
	sectionCount.WithLabelValues("rendered").Set(float64(rendered))
}

func instrumentLoadedSections(n int) {
	sectionCount.WithLabelValues("loaded").Set(float64(n))
}

func instrumentSubmit(t section.UpdateType) {
	buildsSubmitted.WithLabelValues(t.String()).Inc()
}

func instrumentResult(outcome string) {
	buildResults.WithLabelValues(outcome).Inc()
}
