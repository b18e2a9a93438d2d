package patients

import "time"

// LatencyObserver receives per-lookup latency; satisfied by metrics.WebhookMetrics.
type LatencyObserver interface {
	ObserveProviderLatency(operation, status string, seconds float64)
}

// StoreOption configures the Postgres and Supabase stores.
type StoreOption func(*storeOptions)

type storeOptions struct {
	observer LatencyObserver
}

// WithLatencyObserver records lookup latency per store.
func WithLatencyObserver(o LatencyObserver) StoreOption {
	return func(so *storeOptions) {
		so.observer = o
	}
}

func applyStoreOptions(opts []StoreOption) storeOptions {
	var so storeOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&so)
		}
	}
	return so
}

func (so storeOptions) observe(operation, status string, start time.Time) {
	if so.observer == nil {
		return
	}
	so.observer.ObserveProviderLatency(operation, status, time.Since(start).Seconds())
}
