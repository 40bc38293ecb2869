package upstream

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var upstreamDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "plate_upstream_request_duration_seconds",
		Help:    "Latency of plate registry calls in seconds",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	},
	[]string{"call", "outcome"},
)

func init() {
	prometheus.MustRegister(upstreamDuration)
}

func observeCall(call, outcome string, start time.Time) {
	upstreamDuration.WithLabelValues(call, outcome).Observe(time.Since(start).Seconds())
}
