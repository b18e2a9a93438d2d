package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/wolfman30/dentalis-receptionist/internal/booking"
	"github.com/wolfman30/dentalis-receptionist/internal/catalog"
	"github.com/wolfman30/dentalis-receptionist/internal/observability/metrics"
	"github.com/wolfman30/dentalis-receptionist/internal/patients"
	"github.com/wolfman30/dentalis-receptionist/pkg/logging"
)

const (
	slotDisplayFormat = "2006-01-02 15:04"
	noSlotsMessage    = "V najbližších dňoch nemáme voľný termín. Skúste to prosím neskôr alebo nám zavolajte počas ordinačných hodín."
	unknownCallerInfo = "Neznámy volajúci."
	bookingSucceeded  = "Booking successful"
	maxBodyBytes      = 1 << 20
)

// SlotFetcher is satisfied by booking.Fetcher.
type SlotFetcher interface {
	FetchSlots(ctx context.Context, windowDays int) []booking.AvailabilitySlot
}

// BookingCommitter is satisfied by booking.Committer.
type BookingCommitter interface {
	CommitBooking(ctx context.Context, req booking.BookingRequest) booking.BookingResult
}

// PatientFinder is satisfied by patients.Lookup.
type PatientFinder interface {
	Find(ctx context.Context, phone string) *patients.Profile
}

// RetellHandlerConfig configures the RetellHandler.
type RetellHandlerConfig struct {
	Catalog    *catalog.Catalog
	Fetcher    SlotFetcher
	Committer  BookingCommitter
	Patients   PatientFinder
	Metrics    *metrics.WebhookMetrics
	ClinicName string
	Location   *time.Location
	Logger     *logging.Logger
}

// RetellHandler answers the custom-function webhooks of the Retell voice
// agent. Every reply is a 200 with a JSON body the agent can read; failures
// are described in the body.
type RetellHandler struct {
	catalog    *catalog.Catalog
	fetcher    SlotFetcher
	committer  BookingCommitter
	patients   PatientFinder
	metrics    *metrics.WebhookMetrics
	clinicName string
	loc        *time.Location
	logger     *logging.Logger
}

// NewRetellHandler creates a new RetellHandler.
func NewRetellHandler(cfg RetellHandlerConfig) *RetellHandler {
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.Catalog == nil {
		cfg.Catalog = catalog.Default()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if strings.TrimSpace(cfg.ClinicName) == "" {
		cfg.ClinicName = "Dentalis Clinic"
	}
	return &RetellHandler{
		catalog:    cfg.Catalog,
		fetcher:    cfg.Fetcher,
		committer:  cfg.Committer,
		patients:   cfg.Patients,
		metrics:    cfg.Metrics,
		clinicName: cfg.ClinicName,
		loc:        cfg.Location,
		logger:     cfg.Logger,
	}
}

// SlotView is one entry of available_slots.
type SlotView struct {
	Datetime string `json:"datetime"`
	ISO      string `json:"iso"`
	Service  string `json:"service"`
}

// AvailabilityResponse is the Get_Appointment reply.
type AvailabilityResponse struct {
	AvailableSlots []SlotView `json:"available_slots"`
	Message        string     `json:"message,omitempty"`
}

// BookingResponse is the Book_appointment reply.
type BookingResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Details json.RawMessage `json:"details,omitempty"`
}

// FirstWebhookResponse is the call-start reply with caller context.
type FirstWebhookResponse struct {
	ExistingPatientData patients.Profile `json:"existing_patient_data"`
	GreetingMessage     string           `json:"greeting_message"`
}

// Status handles GET /.
func (h *RetellHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "online",
		"service": h.clinicName + " receptionist",
	})
}

// Health handles GET /health.
func (h *RetellHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// RootEvent handles POST /, where Retell posts call lifecycle events.
func (h *RetellHandler) RootEvent(w http.ResponseWriter, r *http.Request) {
	p := h.readPayload(r)
	h.logger.Info("retell: call event", "event", p.Arg("event"), "call_id", p.Arg("call_id"))
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// FirstWebhook handles POST /firstWebhook at the start of a call.
func (h *RetellHandler) FirstWebhook(w http.ResponseWriter, r *http.Request) {
	p := h.readPayload(r)
	number := CallerNumber(r, p)

	var profile *patients.Profile
	if h.patients != nil && number != UnknownCaller {
		profile = h.patients.Find(r.Context(), number)
	}

	if profile == nil {
		h.logger.Info("retell: caller not on file", "caller", number)
		h.metrics.ObserveToolCall("firstWebhook", "not_found")
		info := unknownCallerInfo
		writeJSON(w, http.StatusOK, FirstWebhookResponse{
			ExistingPatientData: patients.Profile{OtherRelevantInfo: &info},
			GreetingMessage:     fmt.Sprintf("Dobrý deň, tu recepcia %s, ako vám môžem pomôcť?", h.clinicName),
		})
		return
	}

	h.logger.Info("retell: returning patient", "caller", number)
	h.metrics.ObserveToolCall("firstWebhook", "found")
	writeJSON(w, http.StatusOK, FirstWebhookResponse{
		ExistingPatientData: *profile,
		GreetingMessage:     fmt.Sprintf("Dobrý deň %s, ako vám dnes môžem pomôcť?", profile.FullName()),
	})
}

// GetAppointment handles POST /Get_Appointment.
func (h *RetellHandler) GetAppointment(w http.ResponseWriter, r *http.Request) {
	p := h.readPayload(r)

	res := h.catalog.ResolveRequest(p.Arg("service"))
	if !res.OK() {
		h.logger.Info("retell: unknown service requested", "service", res.Requested)
		h.metrics.ObserveToolCall("Get_Appointment", "unknown_service")
		writeJSON(w, http.StatusOK, map[string]string{
			"error": fmt.Sprintf("Služba '%s' nie je v ponuke. Ponúkame: %s", res.Requested, strings.Join(h.catalog.Names(), ", ")),
		})
		return
	}

	var slots []booking.AvailabilitySlot
	if h.fetcher != nil {
		slots = h.fetcher.FetchSlots(r.Context(), p.IntArg("days"))
	}
	h.metrics.ObserveSlotsReturned(len(slots))

	resp := AvailabilityResponse{AvailableSlots: make([]SlotView, 0, len(slots))}
	for _, s := range slots {
		resp.AvailableSlots = append(resp.AvailableSlots, SlotView{
			Datetime: s.StartAt.In(h.loc).Format(slotDisplayFormat),
			ISO:      s.ProviderRef,
			Service:  res.Service,
		})
	}
	if len(resp.AvailableSlots) == 0 {
		resp.Message = noSlotsMessage
		h.metrics.ObserveToolCall("Get_Appointment", "no_slots")
	} else {
		h.metrics.ObserveToolCall("Get_Appointment", "ok")
	}

	h.logger.Info("retell: availability served", "service", res.Service, "slots", len(resp.AvailableSlots))
	writeJSON(w, http.StatusOK, resp)
}

// BookAppointment handles POST /Book_appointment.
func (h *RetellHandler) BookAppointment(w http.ResponseWriter, r *http.Request) {
	p := h.readPayload(r)

	req := booking.BookingRequest{
		PatientName:  p.Arg("patient_name"),
		PatientPhone: p.Arg("patient_phone"),
		PatientEmail: p.Arg("patient_email"),
		StartAt:      p.Arg("datetime"),
		Notes:        p.Arg("notes"),
	}

	// An unrecognised service does not block the booking; the front desk sees
	// what the caller asked for in the notes.
	res := h.catalog.ResolveRequest(p.Arg("service"))
	if res.OK() {
		req.Service = res.Service
	} else {
		req.Notes = strings.TrimSpace(req.Notes + "\nPožadovaná služba: " + res.Requested)
	}

	if h.committer == nil {
		h.metrics.ObserveToolCall("Book_appointment", "failed")
		writeJSON(w, http.StatusOK, BookingResponse{Status: "error", Message: booking.ReasonNotConfigured})
		return
	}

	result := h.committer.CommitBooking(r.Context(), req)
	if !result.Confirmed {
		h.logger.Warn("retell: booking failed", "start", req.StartAt, "reason", result.Reason)
		h.metrics.ObserveToolCall("Book_appointment", "failed")
		writeJSON(w, http.StatusOK, BookingResponse{Status: "error", Message: result.Reason})
		return
	}

	h.logger.Info("retell: booking confirmed", "start", req.StartAt, "service", req.Service)
	h.metrics.ObserveToolCall("Book_appointment", "confirmed")
	writeJSON(w, http.StatusOK, BookingResponse{
		Status:  "success",
		Message: bookingSucceeded,
		Details: result.ProviderPayload,
	})
}

// GetBookedAppointment handles POST /GET_booked_appointment. Looking up
// existing bookings is not supported yet.
func (h *RetellHandler) GetBookedAppointment(w http.ResponseWriter, r *http.Request) {
	_ = h.readPayload(r)
	h.metrics.ObserveToolCall("GET_booked_appointment", "stub")
	writeJSON(w, http.StatusOK, map[string]any{"appointment": nil})
}

// Stub acknowledges tool calls the agent may make that have no backend yet,
// so the conversation continues instead of hitting a 404.
func (h *RetellHandler) Stub(w http.ResponseWriter, r *http.Request) {
	_ = h.readPayload(r)
	h.logger.Info("retell: stub tool call", "path", r.URL.Path)
	h.metrics.ObserveToolCall(strings.TrimPrefix(r.URL.Path, "/"), "stub")
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

func (h *RetellHandler) readPayload(r *http.Request) Payload {
	if r.Body == nil {
		return ParsePayload(nil)
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		h.logger.Warn("retell: failed to read body", "path", r.URL.Path, "error", err)
		return ParsePayload(nil)
	}
	return ParsePayload(body)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
