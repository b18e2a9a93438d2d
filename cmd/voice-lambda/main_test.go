package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/wolfman30/dentalis-receptionist/internal/api/router"
	"github.com/wolfman30/dentalis-receptionist/internal/http/handlers"
	"github.com/wolfman30/dentalis-receptionist/internal/observability/metrics"
	"github.com/wolfman30/dentalis-receptionist/internal/patients"
	"github.com/wolfman30/dentalis-receptionist/pkg/logging"
)

func testHandler() http.Handler {
	logger := logging.New("error")
	retell := handlers.NewRetellHandler(handlers.RetellHandlerConfig{
		Patients: patients.NewLookup(nil, patients.DemoStore(), 0, logger),
		Metrics:  metrics.NewWebhookMetrics(prometheus.NewRegistry()),
		Logger:   logger,
	})
	return router.New(&router.Config{Logger: logger, Retell: retell})
}

func event(method, path, body string) events.APIGatewayV2HTTPRequest {
	return events.APIGatewayV2HTTPRequest{
		RawPath: path,
		Body:    body,
		Headers: map[string]string{"content-type": "application/json"},
		RequestContext: events.APIGatewayV2HTTPRequestContext{
			RequestID: "lambda-req-1",
			HTTP: events.APIGatewayV2HTTPRequestContextHTTPDescription{
				Method:   method,
				Path:     path,
				SourceIP: "203.0.113.5",
			},
		},
	}
}

func TestHandleHealth(t *testing.T) {
	resp, err := handle(context.Background(), testHandler(), event(http.MethodGet, "/health", ""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	if resp.Headers["content-type"] != "application/json" {
		t.Fatalf("expected json content type, got %q", resp.Headers["content-type"])
	}
}

func TestHandleServesFirstWebhook(t *testing.T) {
	evt := event(http.MethodPost, "/firstWebhook", `{"call":{"from_number":"+421903123456"}}`)
	resp, err := handle(context.Background(), testHandler(), evt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(resp.Body), &out); err != nil {
		t.Fatalf("invalid json body: %v", err)
	}
	if out["greeting_message"] != "Dobrý deň Milan Majtán, ako vám dnes môžem pomôcť?" {
		t.Fatalf("unexpected greeting: %v", out["greeting_message"])
	}
}

func TestHandlePassesQueryString(t *testing.T) {
	evt := event(http.MethodPost, "/firstWebhook", "")
	evt.RawQueryString = "number=%2B421903123456"
	resp, err := handle(context.Background(), testHandler(), evt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(resp.Body), &out); err != nil {
		t.Fatalf("invalid json body: %v", err)
	}
	data, _ := out["existing_patient_data"].(map[string]any)
	if data["forename"] != "Milan" {
		t.Fatalf("expected patient from query number, got %v", data)
	}
}

func TestHandleBase64Body(t *testing.T) {
	evt := event(http.MethodPost, "/send_form_cancel", base64.StdEncoding.EncodeToString([]byte(`{"args":{}}`)))
	evt.IsBase64Encoded = true
	resp, err := handle(context.Background(), testHandler(), evt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK || resp.Body != "{\"status\":\"success\"}\n" {
		t.Fatalf("unexpected response: %d %q", resp.StatusCode, resp.Body)
	}
}

func TestHandleInvalidBase64Body(t *testing.T) {
	evt := event(http.MethodPost, "/Get_Appointment", "%%%")
	evt.IsBase64Encoded = true
	resp, err := handle(context.Background(), testHandler(), evt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertEmptyReply(t, resp)
}

func TestHandleUnbuildableRequest(t *testing.T) {
	evt := event("GET POST", "/Get_Appointment", "{}")
	resp, err := handle(context.Background(), testHandler(), evt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertEmptyReply(t, resp)
}

func assertEmptyReply(t *testing.T, resp events.APIGatewayV2HTTPResponse) {
	t.Helper()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	if resp.Body != "{}" {
		t.Fatalf("expected empty json body, got %q", resp.Body)
	}
	if ct := resp.Headers["content-type"]; ct != "application/json" {
		t.Fatalf("expected json content type, got %q", ct)
	}
}

func TestDecodeBodyPlain(t *testing.T) {
	body, err := decodeBody(events.APIGatewayV2HTTPRequest{Body: "hello"})
	if err != nil || string(body) != "hello" {
		t.Fatalf("unexpected decode result: %q %v", body, err)
	}
}
