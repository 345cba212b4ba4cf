package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PayPalMetrics records outbound API call and webhook outcomes.
type PayPalMetrics struct {
	apiDuration   *prometheus.HistogramVec
	apiCalls      *prometheus.CounterVec
	webhookEvents *prometheus.CounterVec
}

// NewPayPalMetrics registers the PayPal metrics on the provided registerer.
func NewPayPalMetrics(reg prometheus.Registerer) *PayPalMetrics {
	if reg == nil {
		return &PayPalMetrics{}
	}
	apiDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "paypal_api_call_duration_seconds",
		Help:    "Duration of outbound PayPal API calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	apiCalls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "paypal_api_calls_total",
		Help: "Outbound PayPal API calls by operation and outcome.",
	}, []string{"operation", "outcome"})
	webhookEvents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "paypal_webhook_events_total",
		Help: "Inbound PayPal webhook events by type and outcome.",
	}, []string{"event_type", "outcome"})
	reg.MustRegister(apiDuration, apiCalls, webhookEvents)
	return &PayPalMetrics{
		apiDuration:   apiDuration,
		apiCalls:      apiCalls,
		webhookEvents: webhookEvents,
	}
}

// ObserveAPICall records one outbound call.
func (m *PayPalMetrics) ObserveAPICall(operation string, success bool, duration time.Duration) {
	if m == nil {
		return
	}
	if m.apiDuration != nil {
		m.apiDuration.WithLabelValues(normalizeLabel(operation)).Observe(duration.Seconds())
	}
	if m.apiCalls != nil {
		m.apiCalls.WithLabelValues(normalizeLabel(operation), outcomeLabel(success)).Inc()
	}
}

// IncWebhookEvent records one inbound webhook event.
func (m *PayPalMetrics) IncWebhookEvent(eventType string, success bool) {
	if m == nil || m.webhookEvents == nil {
		return
	}
	m.webhookEvents.WithLabelValues(normalizeLabel(eventType), outcomeLabel(success)).Inc()
}

func outcomeLabel(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
