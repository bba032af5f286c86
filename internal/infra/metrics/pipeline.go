package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(papersProcessedTotal, stageCallsTotal, stageLatencySeconds, revisionRounds, finalScore)
}

var papersProcessedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "papers_processed_total",
		Help: "Total number of paper generation jobs finished, labeled by terminal status.",
	},
	[]string{"status"}, // 'completed', 'error'
)

var stageCallsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "pipeline_stage_calls_total",
		Help: "Total number of stage invocations, labeled by agent role and outcome.",
	},
	[]string{"role", "outcome"}, // outcome: 'ok', 'error'
)

var stageLatencySeconds = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "pipeline_stage_latency_seconds",
		Help:    "Generation latency per stage invocation.",
		Buckets: []float64{1, 5, 15, 30, 60, 120, 240},
	},
	[]string{"role"},
)

var revisionRounds = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "pipeline_revision_rounds",
		Help:    "Revision rounds performed before the loop terminated.",
		Buckets: []float64{0, 1, 2, 3, 4, 5, 8},
	},
)

var finalScore = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "pipeline_final_score",
		Help:    "Final overall review score at loop termination.",
		Buckets: []float64{2, 4, 6, 7, 8, 8.5, 9, 9.5, 10},
	},
)

func IncPaper(status string) {
	papersProcessedTotal.WithLabelValues(norm(status)).Inc()
}

func ObserveStage(role string, ok bool, seconds float64) {
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	stageCallsTotal.WithLabelValues(norm(role), outcome).Inc()
	stageLatencySeconds.WithLabelValues(norm(role)).Observe(seconds)
}

func ObserveRevisionRounds(n int) {
	revisionRounds.Observe(float64(n))
}

func ObserveFinalScore(v float64) {
	finalScore.Observe(v)
}
