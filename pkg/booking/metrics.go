package booking

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts booking attempts for one process.
type Metrics struct {
	registry     *prometheus.Registry
	attempts     *prometheus.CounterVec
	windowClosed prometheus.Counter
}

// NewMetrics registers the booking counters on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		attempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "roombooker",
				Name:      "booking_attempts_total",
				Help:      "Count of booking attempts by result.",
			},
			[]string{"result"},
		),
		windowClosed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "roombooker",
				Name:      "window_closed_total",
				Help:      "Count of runs that stopped because the booking window closed.",
			},
		),
	}
	m.registry.MustRegister(m.attempts, m.windowClosed)
	return m
}

func (m *Metrics) Attempt(success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	m.attempts.WithLabelValues(result).Inc()
}

func (m *Metrics) WindowClosed() {
	m.windowClosed.Inc()
}

// Gatherer exposes the registry.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// WriteTextfile writes the counters in the node-exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
