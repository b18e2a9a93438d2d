package booking

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/dentalis-receptionist/internal/calcom"
	"github.com/wolfman30/dentalis-receptionist/internal/catalog"
	"github.com/wolfman30/dentalis-receptionist/pkg/logging"
)

const (
	defaultBookingTimeout = 8 * time.Second

	// PlaceholderEmail stands in when the conversation did not collect an email.
	PlaceholderEmail = "no-email@provided.com"
	// UnknownValue stands in for missing name or phone.
	UnknownValue = "unknown"

	defaultNotes   = "Rezervované cez AI Agenta"
	bookingSource  = "retell_ai"
	localInputForm = "2006-01-02 15:04"
)

// Failure reasons reported back to the voice agent.
const (
	ReasonMissingTime   = "missing time"
	ReasonNotConfigured = "Missing Configuration"
	ReasonUnreachable   = "calendar provider unreachable"
)

// CommitterConfig configures a Committer.
type CommitterConfig struct {
	Provider BookingProvider
	Location *time.Location
	Language string
	Timeout  time.Duration
	Logger   *logging.Logger
}

// Committer submits bookings to the calendar provider. It never retries; the
// conversation decides whether to try another slot.
type Committer struct {
	provider BookingProvider
	loc      *time.Location
	language string
	timeout  time.Duration
	logger   *logging.Logger
}

// NewCommitter creates a Committer.
func NewCommitter(cfg CommitterConfig) *Committer {
	c := &Committer{
		provider: cfg.Provider,
		loc:      cfg.Location,
		language: strings.TrimSpace(cfg.Language),
		timeout:  cfg.Timeout,
		logger:   cfg.Logger,
	}
	if c.loc == nil {
		c.loc = time.UTC
	}
	if c.language == "" {
		c.language = "sk"
	}
	if c.timeout <= 0 {
		c.timeout = defaultBookingTimeout
	}
	if c.logger == nil {
		c.logger = logging.Default()
	}
	return c
}

// CommitBooking books req.StartAt. A provider rejection comes back as a failed
// result carrying the provider's error text; transport failures get a fixed
// reason and the detail goes to the log only.
func (c *Committer) CommitBooking(ctx context.Context, req BookingRequest) BookingResult {
	ctx, span := bookingTracer.Start(ctx, "booking.commit")
	defer span.End()

	if strings.TrimSpace(req.StartAt) == "" {
		return Failed(ReasonMissingTime)
	}
	if c.provider == nil || !c.provider.Configured() {
		c.logger.Warn("booking: calendar provider not configured, cannot book")
		return Failed(ReasonNotConfigured)
	}

	payload := c.payload(req)
	span.SetAttributes(
		attribute.String("booking.start", payload.Start),
		attribute.String("booking.service", req.Service),
	)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	raw, err := c.provider.CreateBooking(ctx, payload)
	if err != nil {
		span.RecordError(err)
		var apiErr *calcom.APIError
		if errors.As(err, &apiErr) {
			c.logger.Warn("booking: provider rejected booking", "status", apiErr.Status, "start", payload.Start)
			return Failed("Provider API Error: " + apiErr.Body)
		}
		c.logger.Error("booking: provider request failed", "error", err, "start", payload.Start)
		return Failed(ReasonUnreachable)
	}

	c.logger.Info("booking: confirmed", "start", payload.Start, "service", req.Service)
	return Confirmed(asJSON(raw))
}

func (c *Committer) payload(req BookingRequest) calcom.BookingPayload {
	name := strings.TrimSpace(req.PatientName)
	if name == "" {
		name = UnknownValue
	}
	phone := strings.TrimSpace(req.PatientPhone)
	if phone == "" {
		phone = UnknownValue
	}
	email := strings.TrimSpace(req.PatientEmail)
	if email == "" {
		email = PlaceholderEmail
	}

	metadata := map[string]string{"source": bookingSource}
	service := strings.TrimSpace(req.Service)
	if service != "" {
		metadata["service"] = service
	}

	return calcom.BookingPayload{
		Start: NormalizeStart(req.StartAt, c.loc),
		Responses: calcom.Responses{
			Name:  name,
			Email: email,
			Phone: phone,
			Notes: bookingNotes(req.Notes, service),
		},
		TimeZone: c.loc.String(),
		Language: c.language,
		Metadata: metadata,
	}
}

// bookingNotes records the resolved service for the front desk.
func bookingNotes(notes, service string) string {
	notes = strings.TrimSpace(notes)
	if notes == "" {
		notes = defaultNotes
	}
	if service == "" || strings.EqualFold(service, catalog.GeneralService) {
		return notes
	}
	return notes + "\nSlužba: " + service
}

// NormalizeStart converts the caller's time into the provider's ISO format.
// RFC3339 input is passed through untouched; "YYYY-MM-DD HH:MM" is read as
// clinic-local time. Anything else goes through raw for the provider to judge.
func NormalizeStart(raw string, loc *time.Location) string {
	raw = strings.TrimSpace(raw)
	if _, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return raw
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range []string{localInputForm, "2006-01-02T15:04", "2006-01-02T15:04:05"} {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t.Format(time.RFC3339)
		}
	}
	return raw
}

// asJSON keeps a valid provider body as-is and wraps anything else as a string.
func asJSON(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return nil
	}
	if json.Valid(raw) {
		return raw
	}
	quoted, err := json.Marshal(string(raw))
	if err != nil {
		return nil
	}
	return quoted
}
