package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/wolfman30/dentalis-receptionist/pkg/logging"
)

// WebhookRecoverer turns a panic into 200 with an empty JSON object so the
// voice agent always gets an answer. http.ErrAbortHandler is re-raised.
func WebhookRecoverer(logger *logging.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.Error("webhook handler panicked",
					"path", r.URL.Path,
					"panic", rec,
					"stack", string(debug.Stack()),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte("{}"))
			}()
			next.ServeHTTP(w, r)
		})
	}
}
