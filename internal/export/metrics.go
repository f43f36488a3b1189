package export

import "github.com/prometheus/client_golang/prometheus"

// Metrics instruments exports.
type Metrics struct {
	exports   *prometheus.CounterVec
	fallbacks prometheus.Counter
	duration  *prometheus.HistogramVec
}

// NewMetrics creates the export collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quotation_exports_total",
			Help: "Exports by output kind and outcome.",
		}, []string{"kind", "outcome"}),
		fallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quotation_render_fallbacks_total",
			Help: "Render attempts abandoned in favour of the next backend.",
		}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "quotation_export_duration_seconds",
			Help:    "Time spent producing an export.",
			Buckets: prometheus.DefBuckets,
		}, []string{"kind"}),
	}
	if reg != nil {
		reg.MustRegister(m.exports, m.fallbacks, m.duration)
	}
	return m
}

func (m *Metrics) observe(kind Kind, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.exports.WithLabelValues(string(kind), outcome).Inc()
	m.duration.WithLabelValues(string(kind)).Observe(seconds)
}

func (m *Metrics) fallback() {
	if m == nil {
		return
	}
	m.fallbacks.Inc()
}
