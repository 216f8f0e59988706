package source

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sourceDecodeTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vindec_source_decode_total",
			Help: "Decode attempts per source and outcome.",
		},
		[]string{"source", "outcome"},
	)

	chainExecuteDurationMS = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vindec_chain_execute_duration_ms",
			Help:    "Wall-clock duration of chain executions in milliseconds.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		},
		[]string{"strategy"},
	)
)

func observeSourceDecode(name string, success bool) {
	outcome := "failure"
	if success {
		outcome = "success"
	}
	sourceDecodeTotal.WithLabelValues(name, outcome).Inc()
}

func observeChainExecution(strategy Strategy, elapsed time.Duration) {
	chainExecuteDurationMS.WithLabelValues(string(strategy)).
		Observe(float64(elapsed.Microseconds()) / 1000)
}
