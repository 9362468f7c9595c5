package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/oduya/pendo/internal/config"
	"github.com/redis/go-redis/v9"
)

// balanceTTL bounds how stale a cached credit balance may get if an
// invalidation is lost.
const balanceTTL = time.Hour

type RedisCache struct {
	Client *redis.Client
}

// NewRedisCache initializes Redis client from config.
// Only Addr is mandatory, Password/DB are optional.
func NewRedisCache(cfg *config.Config) *RedisCache {
	opts := &redis.Options{
		Addr: cfg.Redis.Addr,
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}
	return &RedisCache{Client: redis.NewClient(opts)}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return c.Client.Set(ctx, key, value, ttl).Err()
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	return c.Client.Get(ctx, key).Result()
}

func (c *RedisCache) Del(ctx context.Context, key string) error {
	return c.Client.Del(ctx, key).Err()
}

// KeyForCreditBalance generates the Redis key for a user's credit balance.
func (c *RedisCache) KeyForCreditBalance(userID string) string {
	return fmt.Sprintf("credits:balance:%s", userID)
}

// UpdateCreditBalance caches a freshly read balance with a TTL refresh.
func (c *RedisCache) UpdateCreditBalance(ctx context.Context, userID string, balance int64) error {
	return c.Client.Set(ctx, c.KeyForCreditBalance(userID), balance, balanceTTL).Err()
}

// GetCreditBalance returns the cached balance for a user.
// A cache miss is reported via found=false, not an error.
func (c *RedisCache) GetCreditBalance(ctx context.Context, userID string) (int64, bool, error) {
	key := c.KeyForCreditBalance(userID)
	val, err := c.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil // cache miss
	} else if err != nil {
		return 0, false, err
	}
	// refresh TTL on access
	_ = c.Client.Expire(ctx, key, balanceTTL).Err()
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, nil // treat garbage as a miss
	}
	return n, true, nil
}

// InvalidateCreditBalance drops the cached balance after a debit or
// top-up so the next read goes to the database.
func (c *RedisCache) InvalidateCreditBalance(ctx context.Context, userID string) error {
	return c.Client.Del(ctx, c.KeyForCreditBalance(userID)).Err()
}
