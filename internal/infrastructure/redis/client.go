package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Config controls how the idempotency index connects to Redis.
type Config struct {
	URL string
	// PoolSize overrides the pool size from the URL when positive.
	PoolSize    int
	DialTimeout time.Duration
	// ConnectAttempts is the number of pings tried before giving up.
	ConnectAttempts int
}

// NewClient connects to Redis and pings it until it answers or the
// attempts run out.
func NewClient(ctx context.Context, cfg Config, log zerolog.Logger) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}

	client := redis.NewClient(opts)

	attempts := cfg.ConnectAttempts
	if attempts < 1 {
		attempts = 1
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxInterval = 2 * time.Second

	attempt := 0
	err = backoff.Retry(func() error {
		attempt++
		pingErr := client.Ping(ctx).Err()
		if pingErr != nil && attempt < attempts {
			log.Warn().Err(pingErr).Int("attempt", attempt).Str("addr", opts.Addr).Msg("redis not ready, retrying")
		}
		return pingErr
	}, backoff.WithContext(backoff.WithMaxRetries(b, uint64(attempts-1)), ctx))
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis after %d attempts: %w", attempt, err)
	}

	return client, nil
}
