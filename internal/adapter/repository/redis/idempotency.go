package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const processingMarker = "processing"

// IdempotencyStore implements usecase.IdempotencyStore using Redis. It backs
// the Idempotency-Key middleware of the operator API.
type IdempotencyStore struct {
	client redis.UniversalClient
	prefix string
}

// NewIdempotencyStore creates a new IdempotencyStore.
func NewIdempotencyStore(client redis.UniversalClient) *IdempotencyStore {
	return &IdempotencyStore{
		client: client,
		prefix: "gowallet:idempotency-key:",
	}
}

// CheckAndSet claims key with response, or with a processing marker when
// response is nil. When the key is already taken it returns the stored value.
func (s *IdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	fullKey := s.prefix + key

	var value any = processingMarker
	if response != nil {
		value = response
	}

	set, err := s.client.SetNX(ctx, fullKey, value, ttl).Result()
	if err != nil {
		return false, nil, err
	}
	if set {
		return false, nil, nil
	}

	existing, err := s.client.Get(ctx, fullKey).Bytes()
	if err != nil && !errors.Is(err, redis.Nil) {
		return false, nil, err
	}

	return true, existing, nil
}

// Update stores the final response for key.
func (s *IdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	return s.client.Set(ctx, s.prefix+key, response, ttl).Err()
}

// Release deletes key.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.prefix+key).Err()
}

// IsProcessing reports whether a stored value is the in-flight marker.
func IsProcessing(value []byte) bool {
	return string(value) == processingMarker
}
