package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func gatherFamily(t *testing.T, g prometheus.Gatherer, name string) *dto.MetricFamily {
	t.Helper()
	mfs, err := g.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func hasLabel(metric *dto.Metric, name, value string) bool {
	for _, lp := range metric.Label {
		if lp.GetName() == name && lp.GetValue() == value {
			return true
		}
	}
	return false
}

func counterValue(t *testing.T, g prometheus.Gatherer, route, outcome string) float64 {
	t.Helper()
	family := gatherFamily(t, g, "receptionist_webhook_tool_calls_total")
	if family == nil {
		return 0
	}
	for _, metric := range family.Metric {
		if hasLabel(metric, "route", route) && hasLabel(metric, "outcome", outcome) {
			return metric.GetCounter().GetValue()
		}
	}
	return 0
}

func TestWebhookMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWebhookMetrics(reg)
	m.ObserveToolCall("Get_Appointment", "ok")
	m.ObserveToolCall("Get_Appointment", "ok")
	m.ObserveToolCall("Book_appointment", "failed")
	m.ObserveProviderLatency("get_slots", "200", 0.4)
	m.ObserveSlotsReturned(12)

	if got := counterValue(t, reg, "Get_Appointment", "ok"); got != 2 {
		t.Fatalf("tool calls = %v, want 2", got)
	}
	if got := counterValue(t, reg, "Book_appointment", "failed"); got != 1 {
		t.Fatalf("booking failures = %v, want 1", got)
	}

	latency := gatherFamily(t, reg, "receptionist_provider_request_duration_seconds")
	if latency == nil || len(latency.Metric) != 1 {
		t.Fatalf("expected one provider latency series, got %v", latency)
	}
	if !hasLabel(latency.Metric[0], "operation", "get_slots") || !hasLabel(latency.Metric[0], "status", "200") {
		t.Fatalf("unexpected latency labels: %v", latency.Metric[0].Label)
	}
	if got := latency.Metric[0].GetHistogram().GetSampleSum(); got != 0.4 {
		t.Fatalf("latency sum = %v, want 0.4", got)
	}

	slots := gatherFamily(t, reg, "receptionist_availability_slots_returned")
	if slots == nil || slots.Metric[0].GetHistogram().GetSampleCount() != 1 {
		t.Fatalf("expected one slots observation")
	}
}

func TestWebhookMetricsDefaultRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	prev := prometheus.DefaultRegisterer
	prometheus.DefaultRegisterer = reg
	t.Cleanup(func() { prometheus.DefaultRegisterer = prev })

	m := NewWebhookMetrics(nil)
	m.ObserveSlotsReturned(0)
	if gatherFamily(t, reg, "receptionist_availability_slots_returned") == nil {
		t.Fatalf("expected slots histogram in default registry")
	}
}

func TestWebhookMetricsNilSafe(t *testing.T) {
	var m *WebhookMetrics
	m.ObserveToolCall("route", "ok")
	m.ObserveProviderLatency("op", "200", 0.1)
	m.ObserveSlotsReturned(3)
}
