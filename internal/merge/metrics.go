package merge

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var mergeTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "vindec_merge_total",
		Help: "Merge operations per strategy and contributing source count.",
	},
	[]string{"strategy", "sources"},
)

func observeMerge(strategy string, sources int) {
	mergeTotal.WithLabelValues(strategy, strconv.Itoa(sources)).Inc()
}
