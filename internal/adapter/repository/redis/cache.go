package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned by Get when the key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

// Cache implements usecase.Cache using Redis. It holds the externalRef to
// account id mapping used on every provider callback.
type Cache struct {
	client redis.UniversalClient
	prefix string
}

// NewCache creates a new Cache.
func NewCache(client redis.UniversalClient) *Cache {
	return &Cache{
		client: client,
		prefix: "gowallet:cache:",
	}
}

// Get retrieves a value by key.
func (c *Cache) Get(ctx context.Context, key string) (string, error) {
	val, err := c.client.Get(ctx, c.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrCacheMiss
	}
	return val, err
}

// Set stores a value with TTL.
func (c *Cache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.client.Set(ctx, c.prefix+key, value, ttl).Err()
}

// Delete removes a key.
func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.prefix+key).Err()
}
