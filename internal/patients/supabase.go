package patients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/dentalis-receptionist/pkg/logging"
)

const defaultLookupTimeout = 5 * time.Second

// ErrNotConfigured is returned by stores missing their connection settings.
var ErrNotConfigured = errors.New("patients: store not configured")

// phonePattern is the only shape sent to the REST filter.
var phonePattern = regexp.MustCompile(`^\+?[0-9]+$`)

// SupabaseStore reads the patient table through the Supabase REST API.
type SupabaseStore struct {
	httpClient *http.Client
	baseURL    string
	key        string
	logger     *logging.Logger
	opts       storeOptions
}

// NewSupabaseStore creates a store for the project at baseURL authenticated
// with a service-role key.
func NewSupabaseStore(baseURL, key string, timeout time.Duration, logger *logging.Logger, opts ...StoreOption) *SupabaseStore {
	if timeout <= 0 {
		timeout = defaultLookupTimeout
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &SupabaseStore{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		key:        strings.TrimSpace(key),
		logger:     logger,
		opts:       applyStoreOptions(opts),
	}
}

// Configured reports whether both URL and key are set.
func (s *SupabaseStore) Configured() bool {
	return s != nil && s.baseURL != "" && s.key != ""
}

// FindByPhone matches phone against the phone, phone_number and tel columns.
// Values that are not digits with an optional leading + never match.
func (s *SupabaseStore) FindByPhone(ctx context.Context, phone string) (*Profile, error) {
	if !s.Configured() {
		return nil, ErrNotConfigured
	}
	if !phonePattern.MatchString(phone) {
		s.logger.Debug("patients: skipping supabase lookup for malformed phone")
		return nil, nil
	}
	ctx, span := patientsTracer.Start(ctx, "patients.supabase.find", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	params := url.Values{}
	v := quoteFilterValue(phone)
	params.Set("or", fmt.Sprintf("(phone.eq.%s,phone_number.eq.%s,tel.eq.%s)", v, v, v))
	endpoint := s.baseURL + "/rest/v1/patient?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("patients: build supabase request: %w", err)
	}
	req.Header.Set("apikey", s.key)
	req.Header.Set("Authorization", "Bearer "+s.key)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.opts.observe("patients.supabase", "transport_error", start)
		span.RecordError(err)
		return nil, fmt.Errorf("patients: supabase request: %w", err)
	}
	defer resp.Body.Close()
	s.opts.observe("patients.supabase", strconv.Itoa(resp.StatusCode), start)

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("patients: read supabase response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		span.SetStatus(codes.Error, "supabase non-2xx")
		s.logger.Warn("patients: supabase non-2xx response", "status", resp.StatusCode, "body", truncate(string(body), 300))
		return nil, fmt.Errorf("patients: supabase returned %d", resp.StatusCode)
	}

	var rows []map[string]any
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("patients: decode supabase response: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return FromRecord(rows[0]), nil
}

// quoteFilterValue wraps v in double quotes for a PostgREST logic filter so
// commas, dots and parentheses in v stay literal.
func quoteFilterValue(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `"`, `\"`)
	return `"` + v + `"`
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
