package publisher

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts publisher activity. All methods are nil-safe so callers
// can run without metrics wired.
type Metrics struct {
	emitted        *prometheus.CounterVec
	sampled        prometheus.Counter
	dropped        prometheus.Counter
	appendFailures prometheus.Counter
}

// NewMetrics registers the audit publisher metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		emitted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vindec_audit_emitted_total",
			Help: "Audit events emitted, by category.",
		}, []string{"category"}),
		sampled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vindec_audit_sampled_total",
			Help: "Operations events dropped by the sampler.",
		}),
		dropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vindec_audit_dropped_total",
			Help: "Events dropped because the async buffer was full.",
		}),
		appendFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vindec_audit_append_failures_total",
			Help: "Store append failures.",
		}),
	}
}

func (m *Metrics) IncEmitted(category string) {
	if m == nil {
		return
	}
	m.emitted.WithLabelValues(category).Inc()
}

func (m *Metrics) IncSampled() {
	if m == nil {
		return
	}
	m.sampled.Inc()
}

func (m *Metrics) IncDropped() {
	if m == nil {
		return
	}
	m.dropped.Inc()
}

func (m *Metrics) IncAppendFailure() {
	if m == nil {
		return
	}
	m.appendFailures.Inc()
}
