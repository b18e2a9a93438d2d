// Package bootstrap wires configuration into the running receptionist: the
// calendar client, slot fetcher, booking committer, patient lookup and router.
package bootstrap

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/dentalis-receptionist/internal/api/router"
	"github.com/wolfman30/dentalis-receptionist/internal/booking"
	"github.com/wolfman30/dentalis-receptionist/internal/calcom"
	"github.com/wolfman30/dentalis-receptionist/internal/catalog"
	appconfig "github.com/wolfman30/dentalis-receptionist/internal/config"
	"github.com/wolfman30/dentalis-receptionist/internal/http/handlers"
	"github.com/wolfman30/dentalis-receptionist/internal/observability/metrics"
	"github.com/wolfman30/dentalis-receptionist/internal/patients"
	"github.com/wolfman30/dentalis-receptionist/pkg/logging"
)

// App is the assembled webhook service.
type App struct {
	Handler http.Handler
	Metrics *metrics.WebhookMetrics

	pool  *pgxpool.Pool
	redis *redis.Client
}

// Build assembles the service. A nil registry uses the Prometheus default.
// Missing credentials never fail the build; the affected features degrade.
func Build(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, reg *prometheus.Registry) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var metricsHandler http.Handler
	var webhookMetrics *metrics.WebhookMetrics
	if reg != nil {
		webhookMetrics = metrics.NewWebhookMetrics(reg)
		metricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	} else {
		webhookMetrics = metrics.NewWebhookMetrics(prometheus.DefaultRegisterer)
		metricsHandler = promhttp.Handler()
	}

	loc := cfg.ClinicLocation()
	cal := calcom.NewClient(cfg.CalBaseURL, cfg.CalAPIKey, cfg.CalEventTypeID,
		logger.With("component", "calcom"),
		calcom.WithLatencyObserver(webhookMetrics),
	)
	if !cal.Configured() {
		logger.Warn("cal.com credentials missing; availability will be empty and bookings will fail")
	}

	fetcher := booking.NewFetcher(booking.FetcherConfig{
		Provider:      cal,
		Location:      loc,
		WindowDays:    cfg.SlotWindowDays,
		MaxWindowDays: cfg.MaxWindowDays,
		MaxSlots:      cfg.MaxSlots,
		DayStart:      cfg.BusinessDayStart,
		DayEnd:        cfg.BusinessDayEnd,
		Timeout:       cfg.SlotFetchTimeout,
		Logger:        logger,
	})
	committer := booking.NewCommitter(booking.CommitterConfig{
		Provider: cal,
		Location: loc,
		Language: cfg.ClinicLanguage,
		Timeout:  cfg.BookingTimeout,
		Logger:   logger,
	})

	pool := ConnectPostgresPool(ctx, cfg.DatabaseURL, logger)
	redisClient := BuildRedisClient(ctx, cfg, logger, true)
	primary := BuildPatientStore(cfg, pool, redisClient, logger, patients.WithLatencyObserver(webhookMetrics))
	lookup := patients.NewLookup(primary, patients.DemoStore(), cfg.PatientLookupTimeout, logger)

	retell := handlers.NewRetellHandler(handlers.RetellHandlerConfig{
		Catalog:    catalog.Default(),
		Fetcher:    fetcher,
		Committer:  committer,
		Patients:   lookup,
		Metrics:    webhookMetrics,
		ClinicName: cfg.ClinicName,
		Location:   loc,
		Logger:     logger,
	})

	return &App{
		Handler: router.New(&router.Config{
			Logger:         logger,
			Retell:         retell,
			MetricsHandler: metricsHandler,
		}),
		Metrics: webhookMetrics,
		pool:    pool,
		redis:   redisClient,
	}, nil
}

// Close releases database and cache connections.
func (a *App) Close() {
	if a == nil {
		return
	}
	if a.pool != nil {
		a.pool.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
}
