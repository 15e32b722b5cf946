package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PicksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "betengine",
		Name:      "picks_total",
		Help:      "Decisions emitted, by action tier.",
	}, []string{"action"})

	TrapVetoes = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "betengine",
		Name:      "trap_vetoes_total",
		Help:      "Picks blocked by the trap filter.",
	})

	MatchAnalysisDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "betengine",
		Name:      "match_analysis_seconds",
		Help:      "Wall time to analyze one match across all its markets.",
		Buckets:   prometheus.DefBuckets,
	})

	ContextFetchFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "betengine",
		Name:      "context_fetch_failures_total",
		Help:      "Matches dropped because their context could not be loaded.",
	})

	SnapshotsRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "betengine",
		Name:      "snapshots_recorded_total",
		Help:      "Decision snapshots written.",
	})

	SettlementsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "betengine",
		Name:      "settlements_total",
		Help:      "Settled snapshots, by result.",
	}, []string{"result"})
)

// TimeMatch returns a done func that records the analysis duration.
func TimeMatch() func() {
	start := time.Now()
	return func() {
		MatchAnalysisDuration.Observe(time.Since(start).Seconds())
	}
}
