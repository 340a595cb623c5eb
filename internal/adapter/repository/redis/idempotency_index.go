package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iho/gowallet/internal/domain"
)

const pendingMarker = "pending"

// releaseScript deletes the key only while it still holds the pending marker,
// so a committed result is never dropped by a late release.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// IdempotencyIndex implements usecase.IdempotencyIndex on Redis. A key is
// either the pending marker set by SETNX or the JSON snapshot of the
// committed result.
type IdempotencyIndex struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewIdempotencyIndex creates a new IdempotencyIndex. Entries expire after ttl.
func NewIdempotencyIndex(client redis.UniversalClient, ttl time.Duration) *IdempotencyIndex {
	return &IdempotencyIndex{
		client: client,
		prefix: "gowallet:idempotency:",
		ttl:    ttl,
	}
}

func (i *IdempotencyIndex) key(externalTxnRef string, kind domain.OpKind) string {
	return i.prefix + string(kind) + ":" + externalTxnRef
}

// CheckOrReserve reserves the key or reports who holds it.
func (i *IdempotencyIndex) CheckOrReserve(ctx context.Context, externalTxnRef string, kind domain.OpKind) (bool, *domain.OperationResult, error) {
	key := i.key(externalTxnRef, kind)

	set, err := i.client.SetNX(ctx, key, pendingMarker, i.ttl).Result()
	if err != nil {
		return false, nil, err
	}
	if set {
		return false, nil, nil
	}

	raw, err := i.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) || string(raw) == pendingMarker {
		return true, nil, nil
	}
	if err != nil {
		return true, nil, err
	}

	var prior domain.OperationResult
	if err := json.Unmarshal(raw, &prior); err != nil {
		return true, nil, fmt.Errorf("decode idempotency entry %s: %w", key, err)
	}

	return true, &prior, nil
}

// Commit stores the result snapshot under the key.
func (i *IdempotencyIndex) Commit(ctx context.Context, externalTxnRef string, kind domain.OpKind, result *domain.OperationResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}

	return i.client.Set(ctx, i.key(externalTxnRef, kind), data, i.ttl).Err()
}

// Release frees a pending reservation.
func (i *IdempotencyIndex) Release(ctx context.Context, externalTxnRef string, kind domain.OpKind) error {
	return releaseScript.Run(ctx, i.client, []string{i.key(externalTxnRef, kind)}, pendingMarker).Err()
}
