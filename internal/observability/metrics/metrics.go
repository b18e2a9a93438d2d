package metrics

import "github.com/prometheus/client_golang/prometheus"

// WebhookMetrics exposes counters/histograms for voice-agent tool calls and the
// outbound provider requests they trigger.
type WebhookMetrics struct {
	toolCallsTotal  *prometheus.CounterVec
	providerLatency *prometheus.HistogramVec
	slotsReturned   prometheus.Histogram
}

// NewWebhookMetrics registers the webhook collectors on reg, or on the default
// registerer when reg is nil. It panics if they are already registered there.
func NewWebhookMetrics(reg prometheus.Registerer) *WebhookMetrics {
	m := &WebhookMetrics{
		toolCallsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "receptionist",
			Subsystem: "webhook",
			Name:      "tool_calls_total",
			Help:      "Total voice agent webhook calls by route and outcome",
		}, []string{"route", "outcome"}),
		providerLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "receptionist",
			Subsystem: "provider",
			Name:      "request_duration_seconds",
			Help:      "Latency of outbound calendar and patient store requests",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 3, 5, 8, 10},
		}, []string{"operation", "status"}),
		slotsReturned: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "receptionist",
			Subsystem: "availability",
			Name:      "slots_returned",
			Help:      "Number of slots returned to the voice agent per availability query",
			Buckets:   []float64{0, 1, 3, 6, 9, 12, 15},
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.toolCallsTotal, m.providerLatency, m.slotsReturned)
	return m
}

func (m *WebhookMetrics) ObserveToolCall(route, outcome string) {
	if m == nil {
		return
	}
	m.toolCallsTotal.WithLabelValues(route, outcome).Inc()
}

func (m *WebhookMetrics) ObserveProviderLatency(operation, status string, seconds float64) {
	if m == nil {
		return
	}
	m.providerLatency.WithLabelValues(operation, status).Observe(seconds)
}

func (m *WebhookMetrics) ObserveSlotsReturned(count int) {
	if m == nil {
		return
	}
	m.slotsReturned.Observe(float64(count))
}
