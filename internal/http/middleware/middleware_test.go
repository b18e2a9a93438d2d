package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/dentalis-receptionist/pkg/logging"
)

func TestWebhookRecovererAnswers200(t *testing.T) {
	var logs bytes.Buffer
	logger := logging.NewWithWriter("info", &logs)

	h := WebhookRecoverer(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("nil map write")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/Get_Appointment", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "{}", rec.Body.String())
	assert.Contains(t, logs.String(), "webhook handler panicked")
	assert.Contains(t, logs.String(), "/Get_Appointment")
}

func TestWebhookRecovererPassesThrough(t *testing.T) {
	h := WebhookRecoverer(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestWebhookRecovererRepanicsAbort(t *testing.T) {
	h := WebhookRecoverer(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))
	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestRequestLoggerUsesChiRequestID(t *testing.T) {
	var logs bytes.Buffer
	logger := logging.NewWithWriter("info", &logs)

	h := chimw.RequestID(RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("ok"))
	})))

	req := httptest.NewRequest(http.MethodPost, "/Book_appointment", nil)
	req.Header.Set("X-Request-Id", "req-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	out := logs.String()
	assert.Contains(t, out, `"request_id":"req-123"`)
	assert.Contains(t, out, `"status":201`)
	assert.Contains(t, out, `"path":"/Book_appointment"`)
}

func TestRequestLoggerGeneratesID(t *testing.T) {
	var logs bytes.Buffer
	h := RequestLogger(logging.NewWithWriter("info", &logs))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Regexp(t, `"request_id":"[0-9a-f-]{36}"`, logs.String())
}
