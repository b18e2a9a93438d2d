// Package booking turns calendar-provider availability into slots the voice
// agent can read out, and commits bookings the caller picked.
package booking

import (
	"context"
	"encoding/json"
	"time"

	"github.com/wolfman30/dentalis-receptionist/internal/calcom"
)

// AvailabilitySlot is one open start time offered to the caller.
type AvailabilitySlot struct {
	StartAt time.Time
	// ProviderRef is the provider's own timestamp string. Booking sends it back
	// verbatim so no offset information is lost in display formatting.
	ProviderRef string
	// Service is the canonical service name attached after resolution.
	Service string
}

// BookingRequest carries caller-supplied booking arguments. StartAt is the raw
// value from the conversation: an ISO-8601 timestamp or "YYYY-MM-DD HH:MM".
type BookingRequest struct {
	PatientName  string
	PatientPhone string
	PatientEmail string
	StartAt      string
	Service      string
	Notes        string
}

// BookingResult is either confirmed, with the provider's payload, or failed
// with a reason the voice agent can relay.
type BookingResult struct {
	Confirmed       bool
	ProviderPayload json.RawMessage
	Reason          string
}

// Confirmed builds a successful result.
func Confirmed(payload json.RawMessage) BookingResult {
	return BookingResult{Confirmed: true, ProviderPayload: payload}
}

// Failed builds a failed result.
func Failed(reason string) BookingResult {
	return BookingResult{Reason: reason}
}

// SlotProvider reads open slots from the calendar provider.
type SlotProvider interface {
	Configured() bool
	GetSlots(ctx context.Context, q calcom.SlotQuery) (map[string][]calcom.Slot, error)
}

// BookingProvider creates bookings at the calendar provider.
type BookingProvider interface {
	Configured() bool
	CreateBooking(ctx context.Context, p calcom.BookingPayload) (json.RawMessage, error)
}
