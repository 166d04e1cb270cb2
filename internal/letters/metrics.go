package letters

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/JaimeStill/clerk/internal/analysis"
)

// Metrics counts persisted analyses by source. A nil *Metrics records nothing.
type Metrics struct {
	outcomes *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clerk_analysis_outcomes_total",
			Help: "Letter analyses persisted, by outcome source.",
		}, []string{"source"}),
	}
	reg.MustRegister(m.outcomes)
	return m
}

func (m *Metrics) outcome(source analysis.Source) {
	if m == nil {
		return
	}
	m.outcomes.WithLabelValues(string(source)).Inc()
}
