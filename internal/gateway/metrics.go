package gateway

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeSuccess = "success"
	outcomeError   = "error"
)

// Metrics counts model attempts and exhausted calls. A nil *Metrics records nothing.
type Metrics struct {
	attempts *prometheus.CounterVec
	failures *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clerk_gateway_attempts_total",
			Help: "Model call attempts by operation and outcome.",
		}, []string{"op", "outcome"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clerk_gateway_failures_total",
			Help: "Model calls that exhausted every attempt.",
		}, []string{"op"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "clerk_gateway_attempt_duration_seconds",
			Help:    "Model attempt latency.",
			Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"op"}),
	}
	reg.MustRegister(m.attempts, m.failures, m.duration)
	return m
}

func (m *Metrics) attempt(op string, started time.Time, err error) {
	if m == nil {
		return
	}
	outcome := outcomeSuccess
	if err != nil {
		outcome = outcomeError
	}
	m.attempts.WithLabelValues(op, outcome).Inc()
	m.duration.WithLabelValues(op).Observe(time.Since(started).Seconds())
}

func (m *Metrics) failure(op string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(op).Inc()
}
