package handler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeVerified = "verified"
	outcomeInvalid  = "invalid"
	outcomeError    = "error"
)

// Metrics counts notifications by outcome. A nil *Metrics records nothing.
type Metrics struct {
	notifications *prometheus.CounterVec
}

// NewMetrics registers the notification counter on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		notifications: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "payson_notifications_total",
			Help: "Inbound Payson IPN notifications by outcome.",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) observe(outcome string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(outcome).Inc()
}
