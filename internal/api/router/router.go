package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/dentalis-receptionist/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/dentalis-receptionist/internal/http/middleware"
	"github.com/wolfman30/dentalis-receptionist/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger         *logging.Logger
	Retell         *handlers.RetellHandler
	MetricsHandler http.Handler
}

// stubRoutes are tool calls the Retell agent is configured with that only
// need an acknowledgement.
var stubRoutes = []string{
	"/send_form_registration",
	"/Change_appointment",
	"/cancelAppointment",
	"/send_form_cancel",
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	retell := cfg.Retell
	if retell == nil {
		retell = handlers.NewRetellHandler(handlers.RetellHandlerConfig{Logger: logger})
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httpmiddleware.RequestLogger(logger))
	r.Use(httpmiddleware.WebhookRecoverer(logger))

	r.Get("/", retell.Status)
	r.Post("/", retell.RootEvent)
	r.Get("/health", retell.Health)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	// Retell custom-function webhooks. Route names match the agent config.
	r.Post("/firstWebhook", retell.FirstWebhook)
	r.Post("/Get_Appointment", retell.GetAppointment)
	r.Post("/Book_appointment", retell.BookAppointment)
	r.Post("/GET_booked_appointment", retell.GetBookedAppointment)
	for _, path := range stubRoutes {
		r.Post(path, retell.Stub)
	}

	return r
}
