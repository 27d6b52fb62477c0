package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// WebhookMetrics tracks inbound payment webhook outcomes per gateway.
type WebhookMetrics struct {
	deliveries *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewWebhookMetrics registers the webhook metrics on the provided registerer.
func NewWebhookMetrics(reg prometheus.Registerer) *WebhookMetrics {
	if reg == nil {
		return &WebhookMetrics{}
	}
	deliveries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "webhook",
		Name:      "deliveries_total",
		Help:      "Payment webhook deliveries by gateway and outcome.",
	}, []string{"gateway", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "webhook",
		Name:      "processing_seconds",
		Help:      "Time spent handling a payment webhook.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"gateway"})
	reg.MustRegister(deliveries, duration)
	return &WebhookMetrics{deliveries: deliveries, duration: duration}
}

// Observe records one delivery.
func (m *WebhookMetrics) Observe(gateway, outcome string, elapsed time.Duration) {
	if m == nil || m.deliveries == nil {
		return
	}
	gateway = normalizeLabel(gateway)
	m.deliveries.WithLabelValues(gateway, normalizeLabel(outcome)).Inc()
	m.duration.WithLabelValues(gateway).Observe(elapsed.Seconds())
}
