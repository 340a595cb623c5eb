package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gowallet/internal/domain"
)

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	CreateTx(ctx context.Context, tx Transaction, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByExternalRef(ctx context.Context, externalRef string) (*domain.Account, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Account, error)
	GetByIDsForUpdate(ctx context.Context, tx Transaction, ids []string) ([]*domain.Account, error)
	// UpdateBalance writes a new balance if the stored version still equals
	// expectedVersion, bumping it by one. Otherwise it returns domain.ErrVersionConflict.
	UpdateBalance(ctx context.Context, tx Transaction, id string, balance decimal.Decimal, expectedVersion int64, updatedAt time.Time) error
	UpdateStatus(ctx context.Context, tx Transaction, id string, status domain.AccountStatus, updatedAt time.Time) error
	List(ctx context.Context, limit, offset int) ([]*domain.Account, error)
}

// EntryRepository is the append-only ledger store.
type EntryRepository interface {
	// Append inserts the entry and returns its assigned id.
	Append(ctx context.Context, tx Transaction, entry *domain.LedgerEntry) (int64, error)
	ListByExternalRef(ctx context.Context, externalTxnRef string) ([]*domain.LedgerEntry, error)
	ListByExternalRefTx(ctx context.Context, tx Transaction, accountID, externalTxnRef string) ([]*domain.LedgerEntry, error)
	ListByBetRefTx(ctx context.Context, tx Transaction, accountID, betRef string) ([]*domain.LedgerEntry, error)
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.LedgerEntry, error)
	SumByAccount(ctx context.Context, accountID string) (decimal.Decimal, error)
}

// IdempotencyRepository is the durable side of the idempotency index. It is
// read and written inside the same transaction as the ledger entry.
type IdempotencyRepository interface {
	GetTx(ctx context.Context, tx Transaction, externalTxnRef string, kind domain.OpKind) (*domain.IdempotencyRecord, error)
	CreateTx(ctx context.Context, tx Transaction, record *domain.IdempotencyRecord) error
}

// IdempotencyIndex is the fast-path reservation index checked before any lock
// is taken.
type IdempotencyIndex interface {
	// CheckOrReserve reserves the key if it is free. When the key is taken,
	// prior is the committed result, or nil while the owner is still applying it.
	CheckOrReserve(ctx context.Context, externalTxnRef string, kind domain.OpKind) (exists bool, prior *domain.OperationResult, err error)
	Commit(ctx context.Context, externalTxnRef string, kind domain.OpKind, result *domain.OperationResult) error
	Release(ctx context.Context, externalTxnRef string, kind domain.OpKind) error
}

// TransferRepository defines data access for transfers.
type TransferRepository interface {
	Create(ctx context.Context, tx Transaction, transfer *domain.Transfer) error
	GetByID(ctx context.Context, id string) (*domain.Transfer, error)
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Transfer, error)
}

// LedgerRepository defines data access for ledger-wide operations.
type LedgerRepository interface {
	CheckConsistency(ctx context.Context) (totalBalance, totalAmount decimal.Decimal, err error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
}

// AuditRepository defines data access for audit logs.
type AuditRepository interface {
	CreateTx(ctx context.Context, tx Transaction, log *domain.AuditLog) error
	GetByResourceID(ctx context.Context, resourceType, resourceID string) ([]*domain.AuditLog, error)
}

// SeamlessEventRepository stores raw provider callbacks.
type SeamlessEventRepository interface {
	Create(ctx context.Context, event *domain.SeamlessEvent) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs an operation on transient store errors.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore caches whole HTTP responses keyed by the Idempotency-Key header.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a claimed key so the request can be retried.
	Release(ctx context.Context, key string) error
}
