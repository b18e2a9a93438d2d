package bootstrap

import (
	"context"
	"crypto/tls"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	appconfig "github.com/wolfman30/dentalis-receptionist/internal/config"
	"github.com/wolfman30/dentalis-receptionist/internal/patients"
	"github.com/wolfman30/dentalis-receptionist/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// ConnectPostgresPool opens a pgx pool for databaseURL, or returns nil when
// the URL is empty or the database is unreachable.
func ConnectPostgresPool(ctx context.Context, databaseURL string, logger *logging.Logger) *pgxpool.Pool {
	if strings.TrimSpace(databaseURL) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		logger.Warn("postgres pool config invalid", "error", err)
		return nil
	}
	if err := pool.Ping(ctx); err != nil {
		logger.Warn("postgres not available", "error", err)
		pool.Close()
		return nil
	}
	return pool
}

// BuildPatientStore picks the primary patient store: direct Postgres when a
// pool is available, otherwise Supabase REST. The result is wrapped in the
// Redis cache when a client is given. Returns nil when nothing is configured.
func BuildPatientStore(cfg *appconfig.Config, pool *pgxpool.Pool, redisClient *redis.Client, logger *logging.Logger, opts ...patients.StoreOption) patients.Store {
	if cfg == nil {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}

	var store patients.Store
	switch {
	case pool != nil:
		store = patients.NewPostgresStore(pool, opts...)
		logger.Info("patient lookup via postgres")
	case cfg.SupabaseURL != "" && cfg.SupabaseKey != "":
		store = patients.NewSupabaseStore(cfg.SupabaseURL, cfg.SupabaseKey, cfg.PatientLookupTimeout, logger, opts...)
		logger.Info("patient lookup via supabase")
	default:
		logger.Warn("no patient store configured; only demo patients are recognised")
		return nil
	}

	if redisClient != nil {
		store = patients.NewCachedStore(store, redisClient, cfg.PatientCacheTTL, logger)
	}
	return store
}
