package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(progressSubscribers, progressEventsDropped) }

var progressSubscribers = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "progress_subscribers",
		Help: "Live progress subscribers across all papers.",
	},
)

var progressEventsDropped = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "progress_events_dropped_total",
		Help: "Events discarded because a subscriber was slow or gone.",
	},
)

func SetProgressSubscribers(delta int) {
	progressSubscribers.Add(float64(delta))
}

func IncProgressDropped() {
	progressEventsDropped.Inc()
}
