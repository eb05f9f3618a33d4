package receiver

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/seatosky-chris/StatusCake-AutotaskIntegration/internal/config"
)

const cacheKeyPrefix = "statuscake:webhook:"

// AlertCache is the distributed idempotency guard shared across instances.
// The caller treats any error as "proceed"; a guard failure never blocks
// processing.
type AlertCache interface {
	// TryMarkIdempotent stores the test's latest dedup marker and returns
	// false when the same marker was already stored by this or another
	// instance within the dedup window. A different marker displaces the
	// stored one, so a status transition always reopens processing.
	TryMarkIdempotent(ctx context.Context, testID, marker string) (bool, error)
}

// NoopCache disables distributed dedup; the local seen map still applies.
type NoopCache struct{}

func (NoopCache) TryMarkIdempotent(ctx context.Context, testID, marker string) (bool, error) {
	return true, nil
}

// NewRedisClientFromConfig constructs a redis client from app config.
func NewRedisClientFromConfig(c *config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: c.Addr, Password: c.Password, DB: c.DB})
}

type redisCache struct {
	rdb *redis.Client
}

// NewCache wraps a redis client as an AlertCache.
func NewCache(rdb *redis.Client) AlertCache {
	if rdb == nil {
		return NoopCache{}
	}
	return &redisCache{rdb: rdb}
}

func (c *redisCache) TryMarkIdempotent(ctx context.Context, testID, marker string) (bool, error) {
	prev, err := c.rdb.SetArgs(ctx, cacheKeyPrefix+testID, marker, redis.SetArgs{
		TTL: seenTTL,
		Get: true,
	}).Result()
	if err == redis.Nil {
		// no marker stored yet
		return true, nil
	}
	if err != nil {
		return true, err
	}
	return prev != marker, nil
}
