package patients

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/dentalis-receptionist/pkg/logging"
)

const (
	cacheKeyPrefix  = "patients:phone:"
	defaultCacheTTL = 5 * time.Minute
)

// CachedStore is a read-through Redis cache in front of another Store. Only
// hits are cached.
type CachedStore struct {
	next   Store
	client *redis.Client
	ttl    time.Duration
	logger *logging.Logger
}

// NewCachedStore wraps next. A nil client disables caching.
func NewCachedStore(next Store, client *redis.Client, ttl time.Duration, logger *logging.Logger) *CachedStore {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &CachedStore{next: next, client: client, ttl: ttl, logger: logger}
}

func (c *CachedStore) key(phone string) string {
	return cacheKeyPrefix + phone
}

// FindByPhone serves from Redis when possible. Redis failures fall through to
// the wrapped store.
func (c *CachedStore) FindByPhone(ctx context.Context, phone string) (*Profile, error) {
	if c.client != nil {
		data, err := c.client.Get(ctx, c.key(phone)).Bytes()
		switch {
		case err == nil:
			var p Profile
			if jsonErr := json.Unmarshal(data, &p); jsonErr == nil {
				return &p, nil
			}
			c.logger.Warn("patients: discarding corrupt cache entry", "phone", phone)
		case !errors.Is(err, redis.Nil):
			c.logger.Warn("patients: cache get failed", "error", err)
		}
	}

	p, err := c.next.FindByPhone(ctx, phone)
	if err != nil || p == nil || c.client == nil {
		return p, err
	}

	data, err := json.Marshal(p)
	if err != nil {
		return p, nil
	}
	if err := c.client.Set(ctx, c.key(phone), data, c.ttl).Err(); err != nil {
		c.logger.Warn("patients: cache set failed", "error", err)
	}
	return p, nil
}
