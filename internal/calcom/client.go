package calcom

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/dentalis-receptionist/pkg/logging"
)

const (
	defaultBaseURL = "https://api.cal.com/v1"
	defaultTimeout = 10 * time.Second

	// queryTimeFormat is the UTC layout Cal.com expects for startTime/endTime.
	queryTimeFormat = "2006-01-02T15:04:05.000Z"
)

var calcomTracer = otel.Tracer("receptionist.internal.calcom")

// ErrNotConfigured is returned when the API key or event type is missing.
var ErrNotConfigured = errors.New("calcom: api key or event type id not configured")

// LatencyObserver receives per-request latency; satisfied by metrics.WebhookMetrics.
type LatencyObserver interface {
	ObserveProviderLatency(operation, status string, seconds float64)
}

// Client wraps the Cal.com v1 REST endpoints.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	eventTypeID string
	logger      *logging.Logger
	observer    LatencyObserver
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLatencyObserver records request latency per operation.
func WithLatencyObserver(o LatencyObserver) Option {
	return func(c *Client) {
		c.observer = o
	}
}

// NewClient constructs a Cal.com client.
func NewClient(baseURL, apiKey, eventTypeID string, logger *logging.Logger, opts ...Option) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultBaseURL
	}
	if logger == nil {
		logger = logging.Default()
	}
	c := &Client{
		httpClient:  &http.Client{Timeout: defaultTimeout},
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiKey:      strings.TrimSpace(apiKey),
		eventTypeID: strings.TrimSpace(eventTypeID),
		logger:      logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether both credentials are present.
func (c *Client) Configured() bool {
	return c != nil && c.apiKey != "" && c.eventTypeID != ""
}

// GetSlots lists open slots between q.Start and q.End, grouped by date.
func (c *Client) GetSlots(ctx context.Context, q SlotQuery) (map[string][]Slot, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	ctx, span := calcomTracer.Start(ctx, "calcom.get_slots", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	params := url.Values{}
	params.Set("apiKey", c.apiKey)
	params.Set("eventTypeId", c.eventTypeID)
	params.Set("startTime", q.Start.UTC().Format(queryTimeFormat))
	params.Set("endTime", q.End.UTC().Format(queryTimeFormat))
	span.SetAttributes(
		attribute.String("calcom.start_time", params.Get("startTime")),
		attribute.String("calcom.end_time", params.Get("endTime")),
	)

	var resp SlotsResponse
	raw, err := c.do(ctx, "calcom.get_slots", http.MethodGet, "/slots", params, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "get slots")
		return nil, fmt.Errorf("calcom: get slots: %w", err)
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "decode slots")
		return nil, fmt.Errorf("calcom: decode slots: %w", err)
	}
	if resp.Slots == nil {
		return map[string][]Slot{}, nil
	}
	return resp.Slots, nil
}

// EventTypeID returns the configured event type as an integer.
func (c *Client) EventTypeID() (int, error) {
	id, err := strconv.Atoi(c.eventTypeID)
	if err != nil {
		return 0, fmt.Errorf("calcom: invalid event type id %q: %w", c.eventTypeID, err)
	}
	return id, nil
}

// CreateBooking posts a booking and returns the provider's raw response body.
// EventTypeID in p is filled from the client configuration when zero.
func (c *Client) CreateBooking(ctx context.Context, p BookingPayload) (json.RawMessage, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	ctx, span := calcomTracer.Start(ctx, "calcom.create_booking", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	if p.EventTypeID == 0 {
		id, err := c.EventTypeID()
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		p.EventTypeID = id
	}
	span.SetAttributes(
		attribute.Int("calcom.event_type_id", p.EventTypeID),
		attribute.String("calcom.start", p.Start),
	)

	params := url.Values{}
	params.Set("apiKey", c.apiKey)

	raw, err := c.do(ctx, "calcom.create_booking", http.MethodPost, "/bookings", params, p)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "create booking")
		return nil, fmt.Errorf("calcom: create booking: %w", err)
	}

	b := parseBooking(raw)
	c.logger.Info("calcom: booking created", "booking_id", b.ID, "uid", b.UID, "status", b.Status, "start", p.Start)
	return raw, nil
}

func (c *Client) do(ctx context.Context, operation, method, path string, params url.Values, body any) (json.RawMessage, error) {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", c.redact(err))
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(operation, "transport_error", start)
		return nil, fmt.Errorf("http request: %w", c.redact(err))
	}
	defer resp.Body.Close()
	c.observe(operation, strconv.Itoa(resp.StatusCode), start)

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := strings.TrimSpace(string(respBody))
		c.logger.Warn("calcom: non-2xx response", "status", resp.StatusCode, "path", path, "body", truncate(msg, 300))
		return nil, &APIError{Status: resp.StatusCode, Body: msg}
	}
	return json.RawMessage(respBody), nil
}

func (c *Client) observe(operation, status string, start time.Time) {
	if c.observer == nil {
		return
	}
	c.observer.ObserveProviderLatency(operation, status, time.Since(start).Seconds())
}

// redact strips the API key from the URL net/http embeds in its errors.
func (c *Client) redact(err error) error {
	var ue *url.Error
	if !errors.As(err, &ue) {
		return err
	}
	if u, perr := url.Parse(ue.URL); perr == nil {
		q := u.Query()
		if q.Has("apiKey") {
			q.Set("apiKey", "REDACTED")
			u.RawQuery = q.Encode()
		}
		ue.URL = u.String()
	}
	if c.apiKey != "" {
		ue.URL = strings.ReplaceAll(ue.URL, c.apiKey, "REDACTED")
	}
	return err
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
