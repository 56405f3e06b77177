package escrow

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type engineMetrics struct {
	transitions *prometheus.CounterVec
	failures    *prometheus.CounterVec
}

var (
	metricsOnce sync.Once
	metricsReg  *engineMetrics
)

// Metrics returns the lazily-initialised escrow metrics registry.
func Metrics() *engineMetrics {
	metricsOnce.Do(func() {
		metricsReg = &engineMetrics{
			transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "nexafx",
				Subsystem: "escrow",
				Name:      "transitions_total",
				Help:      "Committed escrow state transitions segmented by operation.",
			}, []string{"op"}),
			failures: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "nexafx",
				Subsystem: "escrow",
				Name:      "failures_total",
				Help:      "Rejected escrow operations segmented by operation and reason.",
			}, []string{"op", "reason"}),
		}
		prometheus.MustRegister(metricsReg.transitions, metricsReg.failures)
	})
	return metricsReg
}

func observe(op string, err error) {
	m := Metrics()
	if err == nil {
		m.transitions.WithLabelValues(op).Inc()
		return
	}
	m.failures.WithLabelValues(op, failureReason(err)).Inc()
}

func failureReason(err error) string {
	switch err {
	case ErrInvalidAmount:
		return "invalid_amount"
	case ErrInvalidAddress:
		return "invalid_address"
	case ErrInvalidTimestamp:
		return "invalid_timestamp"
	case ErrUnauthorized:
		return "unauthorized"
	case ErrStateMismatch:
		return "state_mismatch"
	case ErrNotFound:
		return "not_found"
	case ErrPaused:
		return "paused"
	default:
		return "other"
	}
}
