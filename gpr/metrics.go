package gpr

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains Prometheus collectors for interpolation calls.
// A nil *Metrics records nothing.
type Metrics struct {
	calls    *prometheus.CounterVec
	singular *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg
// unless reg is nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		calls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gpr_calls_total",
				Help: "Total number of interpolation calls",
			},
			[]string{"workflow", "result"},
		),
		singular: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gpr_singular_total",
				Help: "Total number of failed covariance factorizations",
			},
			[]string{"stage"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gpr_call_duration_seconds",
				Help:    "Duration of interpolation calls",
				Buckets: prometheus.ExponentialBuckets(1e-5, 4, 10),
			},
			[]string{"workflow"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.calls, m.singular, m.duration)
	}
	return m
}

// observe records the outcome of a call started at start.
func (m *Metrics) observe(workflow string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.duration.WithLabelValues(workflow).Observe(time.Since(start).Seconds())
	result := "ok"
	switch {
	case err == nil:
	case errors.Is(err, ErrSingular):
		result = "singular"
		stage := "unknown"
		var serr *SingularError
		if errors.As(err, &serr) {
			stage = serr.Stage
		}
		m.singular.WithLabelValues(stage).Inc()
	case errors.Is(err, ErrDimension):
		result = "dimension"
	case errors.Is(err, ErrAllocation):
		result = "allocation"
	default:
		result = "error"
	}
	m.calls.WithLabelValues(workflow, result).Inc()
}
