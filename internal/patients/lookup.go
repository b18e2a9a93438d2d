package patients

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/dentalis-receptionist/pkg/logging"
)

var patientsTracer = otel.Tracer("receptionist.internal.patients")

// Lookup resolves callers against a primary store and then a fallback.
type Lookup struct {
	primary  Store
	fallback Store
	timeout  time.Duration
	logger   *logging.Logger
}

// NewLookup creates a Lookup. Either store may be nil.
func NewLookup(primary, fallback Store, timeout time.Duration, logger *logging.Logger) *Lookup {
	if timeout <= 0 {
		timeout = defaultLookupTimeout
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Lookup{primary: primary, fallback: fallback, timeout: timeout, logger: logger}
}

// Find returns the caller's profile or nil. Store errors are logged and
// treated as not found.
func (l *Lookup) Find(ctx context.Context, phone string) *Profile {
	ctx, span := patientsTracer.Start(ctx, "patients.find")
	defer span.End()

	phone = NormalizePhone(phone)
	if phone == "" {
		return nil
	}

	for _, store := range []Store{l.primary, l.fallback} {
		if store == nil {
			continue
		}
		p := l.find(ctx, store, phone)
		if p != nil {
			span.SetAttributes(attribute.Bool("patients.found", true))
			return p
		}
	}
	span.SetAttributes(attribute.Bool("patients.found", false))
	return nil
}

func (l *Lookup) find(ctx context.Context, store Store, phone string) *Profile {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	p, err := store.FindByPhone(ctx, phone)
	if err != nil {
		l.logger.Warn("patients: lookup failed", "error", err)
		return nil
	}
	return p
}
