package multipageform

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Operation names used in metric labels
const (
	OpSet    = "set"
	OpGet    = "get"
	OpClear  = "clear"
	OpExists = "exists"
)

// Metrics holds the prometheus collectors for the service
type Metrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them on reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "multipageform_operations_total",
			Help: "Form data operations by backend and outcome",
		}, []string{"operation", "backend", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "multipageform_operation_duration_seconds",
			Help:    "Time spent in form data operations",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation", "backend"}),
	}
	if reg != nil {
		reg.MustRegister(m.operations, m.duration)
	}
	return m
}

func (m *Metrics) observe(op, backend string, started time.Time, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	switch {
	case err == nil:
	case IsNotFound(err):
		outcome = "not_found"
	case IsMissingIdentifier(err):
		outcome = "missing_identifier"
	default:
		outcome = "error"
	}
	m.operations.WithLabelValues(op, backend, outcome).Inc()
	m.duration.WithLabelValues(op, backend).Observe(time.Since(started).Seconds())
}
