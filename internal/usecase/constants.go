package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	// This prevents long-running transactions from blocking account rows
	DefaultTransactionTimeout = 10 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// AccountRefCacheTTL is how long externalRef -> id mappings are cached
	AccountRefCacheTTL = time.Hour

	accountRefCachePrefix = "account-ref:"
)
