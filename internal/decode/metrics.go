package decode

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	decodeDurationMS = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vindec_decode_duration_ms",
			Help:    "End-to-end decode duration in milliseconds.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 14),
		},
		[]string{"mode", "outcome"},
	)

	decodeCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vindec_decode_cache_total",
			Help: "Merged-record cache lookups by outcome.",
		},
		[]string{"outcome"},
	)
)

func observeDecode(mode, outcome string, elapsed time.Duration) {
	decodeDurationMS.WithLabelValues(mode, outcome).
		Observe(float64(elapsed.Microseconds()) / 1000)
}

func observeCacheLookup(outcome string) {
	decodeCacheTotal.WithLabelValues(outcome).Inc()
}
