package payson

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts API calls per action and outcome. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics registers the client collectors on reg. Collectors already
// registered by an earlier client are reused.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payson_api_requests_total",
		Help: "Payson API calls by action and result.",
	}, []string{"action", "result"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "payson_api_request_duration_seconds",
		Help:    "Latency of Payson API calls.",
		Buckets: prometheus.DefBuckets,
	}, []string{"action"})

	return &Metrics{
		requests: register(reg, requests),
		duration: register(reg, duration),
	}
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) T {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

func (m *Metrics) observe(action string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.duration.WithLabelValues(action).Observe(time.Since(start).Seconds())
	m.requests.WithLabelValues(action, resultLabel(err)).Inc()
}

func resultLabel(err error) string {
	var apiErr *APIError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &apiErr):
		return "http_error"
	default:
		return "transport_error"
	}
}
