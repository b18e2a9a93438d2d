// Package calcom contains the Cal.com v1 REST client used for slot lookup and
// booking creation.
package calcom

import (
	"encoding/json"
	"fmt"
	"time"
)

// Slot is a single open start time as returned by GET /slots.
type Slot struct {
	Time string `json:"time"`
}

// SlotsResponse is the GET /slots body: slots grouped by calendar date.
type SlotsResponse struct {
	Slots map[string][]Slot `json:"slots"`
}

// SlotQuery bounds a slot lookup.
type SlotQuery struct {
	Start time.Time
	End   time.Time
}

// Responses is the attendee form block of a booking request.
type Responses struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
	Notes string `json:"notes,omitempty"`
}

// BookingPayload is the POST /bookings body.
type BookingPayload struct {
	EventTypeID int               `json:"eventTypeId"`
	Start       string            `json:"start"`
	Responses   Responses         `json:"responses"`
	TimeZone    string            `json:"timeZone"`
	Language    string            `json:"language"`
	Metadata    map[string]string `json:"metadata"`
}

// APIError is returned when Cal.com answers with a non-2xx status.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("cal.com API returned %d: %s", e.Status, e.Body)
}

// Booking is the subset of the created booking we log. The full payload is
// passed through to the caller untouched.
type Booking struct {
	ID     int    `json:"id"`
	UID    string `json:"uid"`
	Status string `json:"status"`
}

func parseBooking(raw json.RawMessage) Booking {
	var b Booking
	_ = json.Unmarshal(raw, &b)
	return b
}
