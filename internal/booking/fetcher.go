package booking

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/dentalis-receptionist/internal/calcom"
	"github.com/wolfman30/dentalis-receptionist/pkg/logging"
)

var bookingTracer = otel.Tracer("receptionist.internal.booking")

const (
	defaultWindowDays   = 4
	defaultMaxWindow    = 30
	defaultMaxSlots     = 12
	defaultFetchTimeout = 5 * time.Second
	defaultDayStart     = 8
	defaultDayEnd       = 18
)

// FetcherConfig configures a Fetcher. Zero values take the defaults.
type FetcherConfig struct {
	Provider   SlotProvider
	Location   *time.Location
	WindowDays int
	// MaxWindowDays caps caller-requested windows.
	MaxWindowDays int
	MaxSlots      int
	DayStart      int
	DayEnd        int
	Timeout       time.Duration
	Logger        *logging.Logger
	Now           func() time.Time
}

// Fetcher queries the calendar provider for open slots.
type Fetcher struct {
	provider   SlotProvider
	loc        *time.Location
	windowDays int
	maxWindow  int
	maxSlots   int
	dayStart   int
	dayEnd     int
	timeout    time.Duration
	logger     *logging.Logger
	now        func() time.Time
}

// NewFetcher creates a Fetcher.
func NewFetcher(cfg FetcherConfig) *Fetcher {
	f := &Fetcher{
		provider:   cfg.Provider,
		loc:        cfg.Location,
		windowDays: cfg.WindowDays,
		maxWindow:  cfg.MaxWindowDays,
		maxSlots:   cfg.MaxSlots,
		dayStart:   cfg.DayStart,
		dayEnd:     cfg.DayEnd,
		timeout:    cfg.Timeout,
		logger:     cfg.Logger,
		now:        cfg.Now,
	}
	if f.loc == nil {
		f.loc = time.UTC
	}
	if f.windowDays <= 0 {
		f.windowDays = defaultWindowDays
	}
	if f.maxWindow <= 0 {
		f.maxWindow = defaultMaxWindow
	}
	if f.windowDays > f.maxWindow {
		f.maxWindow = f.windowDays
	}
	if f.maxSlots <= 0 {
		f.maxSlots = defaultMaxSlots
	}
	if f.dayStart <= 0 && f.dayEnd <= 0 {
		f.dayStart, f.dayEnd = defaultDayStart, defaultDayEnd
	}
	if f.dayEnd <= f.dayStart {
		f.dayEnd = defaultDayEnd
	}
	if f.timeout <= 0 {
		f.timeout = defaultFetchTimeout
	}
	if f.logger == nil {
		f.logger = logging.Default()
	}
	if f.now == nil {
		f.now = time.Now
	}
	return f
}

// Window returns the query window for windowDays: tomorrow at the start of the
// business day through tomorrow+windowDays at its end, in clinic time.
// Non-positive windowDays uses the configured default; larger values are
// capped at MaxWindowDays.
func (f *Fetcher) Window(windowDays int) (time.Time, time.Time) {
	if windowDays <= 0 {
		windowDays = f.windowDays
	}
	if windowDays > f.maxWindow {
		windowDays = f.maxWindow
	}
	now := f.now().In(f.loc)
	y, m, d := now.Date()
	start := time.Date(y, m, d+1, f.dayStart, 0, 0, 0, f.loc)
	end := time.Date(y, m, d+1+windowDays, f.dayEnd, 0, 0, 0, f.loc)
	return start, end
}

// MaxSlots is the cap applied to every result.
func (f *Fetcher) MaxSlots() int {
	return f.maxSlots
}

// FetchSlots returns up to MaxSlots open slots in ascending order. Every
// failure degrades to an empty result.
func (f *Fetcher) FetchSlots(ctx context.Context, windowDays int) []AvailabilitySlot {
	ctx, span := bookingTracer.Start(ctx, "booking.fetch_slots")
	defer span.End()

	if f.provider == nil || !f.provider.Configured() {
		f.logger.Warn("booking: calendar provider not configured, returning no slots")
		return []AvailabilitySlot{}
	}

	start, end := f.Window(windowDays)
	span.SetAttributes(
		attribute.String("booking.window_start", start.Format(time.RFC3339)),
		attribute.String("booking.window_end", end.Format(time.RFC3339)),
	)

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	grouped, err := f.provider.GetSlots(ctx, calcom.SlotQuery{Start: start, End: end})
	if err != nil {
		span.RecordError(err)
		f.logger.Warn("booking: slot fetch failed", "error", err, "window_start", start, "window_end", end)
		return []AvailabilitySlot{}
	}

	slots := make([]AvailabilitySlot, 0)
	for date, daySlots := range grouped {
		for _, s := range daySlots {
			ref := strings.TrimSpace(s.Time)
			if ref == "" {
				continue
			}
			at, err := parseProviderTime(ref)
			if err != nil {
				f.logger.Debug("booking: skipping unparsable slot", "date", date, "time", ref, "error", err)
				continue
			}
			if at.Before(start) || at.After(end) {
				continue
			}
			slots = append(slots, AvailabilitySlot{StartAt: at.In(f.loc), ProviderRef: ref})
		}
	}

	sort.SliceStable(slots, func(i, j int) bool {
		return slots[i].StartAt.Before(slots[j].StartAt)
	})
	if len(slots) > f.maxSlots {
		slots = slots[:f.maxSlots]
	}
	span.SetAttributes(attribute.Int("booking.slot_count", len(slots)))
	return slots
}

// parseProviderTime accepts RFC3339 with or without fractional seconds.
func parseProviderTime(raw string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, raw)
}
