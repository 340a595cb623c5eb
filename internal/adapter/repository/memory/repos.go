package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gowallet/internal/domain"
	"github.com/iho/gowallet/internal/usecase"
)

// IdempotencyRepository implements usecase.IdempotencyRepository.
type IdempotencyRepository struct {
	store *Store
}

// NewIdempotencyRepository creates a new IdempotencyRepository.
func NewIdempotencyRepository(store *Store) *IdempotencyRepository {
	return &IdempotencyRepository{store: store}
}

// GetTx returns the record for (ref, kind), looking at tx's staged records first.
func (r *IdempotencyRepository) GetTx(_ context.Context, t usecase.Transaction, externalTxnRef string, kind domain.OpKind) (*domain.IdempotencyRecord, error) {
	tx, err := asTx(t)
	if err != nil {
		return nil, err
	}

	for _, rec := range tx.records {
		if rec.ExternalTxnRef == externalTxnRef && rec.OpKind == kind {
			return rec, nil
		}
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	rec, ok := r.store.records[entryKey{externalTxnRef, kind}]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	return rec, nil
}

// CreateTx stages a record.
func (r *IdempotencyRepository) CreateTx(_ context.Context, t usecase.Transaction, record *domain.IdempotencyRecord) error {
	tx, err := asTx(t)
	if err != nil {
		return err
	}

	tx.records = append(tx.records, record)
	return nil
}

// TransferRepository implements usecase.TransferRepository.
type TransferRepository struct {
	store *Store
}

// NewTransferRepository creates a new TransferRepository.
func NewTransferRepository(store *Store) *TransferRepository {
	return &TransferRepository{store: store}
}

// Create stages a transfer.
func (r *TransferRepository) Create(_ context.Context, t usecase.Transaction, transfer *domain.Transfer) error {
	tx, err := asTx(t)
	if err != nil {
		return err
	}

	c := *transfer
	tx.transfers = append(tx.transfers, &c)
	return nil
}

// GetByID retrieves a transfer.
func (r *TransferRepository) GetByID(_ context.Context, id string) (*domain.Transfer, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	t, ok := r.store.transfers[id]
	if !ok {
		return nil, domain.ErrTransferNotFound
	}
	c := *t
	return &c, nil
}

// ListByAccount lists transfers touching an account, newest first.
func (r *TransferRepository) ListByAccount(_ context.Context, accountID string, limit, offset int) ([]*domain.Transfer, error) {
	r.store.mu.RLock()
	var out []*domain.Transfer
	for _, t := range r.store.transfers {
		if t.FromAccountID == accountID || t.ToAccountID == accountID {
			c := *t
			out = append(out, &c)
		}
	}
	r.store.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	return page(out, limit, offset), nil
}

// OutboxRepository implements usecase.OutboxRepository.
type OutboxRepository struct {
	store *Store
}

// NewOutboxRepository creates a new OutboxRepository.
func NewOutboxRepository(store *Store) *OutboxRepository {
	return &OutboxRepository{store: store}
}

// Create stages an event.
func (r *OutboxRepository) Create(_ context.Context, t usecase.Transaction, event *domain.OutboxEvent) error {
	tx, err := asTx(t)
	if err != nil {
		return err
	}

	tx.outbox = append(tx.outbox, event)
	return nil
}

// GetUnpublished returns unpublished events in insertion order.
func (r *OutboxRepository) GetUnpublished(_ context.Context, limit int) ([]*domain.OutboxEvent, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []*domain.OutboxEvent
	for _, e := range r.store.outbox {
		if e.Published {
			continue
		}
		out = append(out, e)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// MarkPublished marks an event as published.
func (r *OutboxRepository) MarkPublished(_ context.Context, id string, publishedAt time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, e := range r.store.outbox {
		if e.ID == id {
			e.Published = true
			e.PublishedAt = &publishedAt
		}
	}
	return nil
}

// AuditRepository implements usecase.AuditRepository.
type AuditRepository struct {
	store *Store
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(store *Store) *AuditRepository {
	return &AuditRepository{store: store}
}

// CreateTx stages an audit log.
func (r *AuditRepository) CreateTx(_ context.Context, t usecase.Transaction, log *domain.AuditLog) error {
	tx, err := asTx(t)
	if err != nil {
		return err
	}

	tx.audit = append(tx.audit, log)
	return nil
}

// GetByResourceID lists audit logs of a resource, newest first.
func (r *AuditRepository) GetByResourceID(_ context.Context, resourceType, resourceID string) ([]*domain.AuditLog, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []*domain.AuditLog
	for i := len(r.store.audit) - 1; i >= 0; i-- {
		l := r.store.audit[i]
		if l.ResourceType == resourceType && l.ResourceID == resourceID {
			out = append(out, l)
		}
	}
	return out, nil
}

// SeamlessEventRepository implements usecase.SeamlessEventRepository.
type SeamlessEventRepository struct {
	store *Store
}

// NewSeamlessEventRepository creates a new SeamlessEventRepository.
func NewSeamlessEventRepository(store *Store) *SeamlessEventRepository {
	return &SeamlessEventRepository{store: store}
}

// Create records a callback immediately.
func (r *SeamlessEventRepository) Create(_ context.Context, event *domain.SeamlessEvent) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.nextEventID++
	event.ID = r.store.nextEventID
	r.store.events = append(r.store.events, event)
	return nil
}

// List returns every recorded callback.
func (r *SeamlessEventRepository) List() []*domain.SeamlessEvent {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]*domain.SeamlessEvent, len(r.store.events))
	copy(out, r.store.events)
	return out
}

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	store *Store
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(store *Store) *LedgerRepository {
	return &LedgerRepository{store: store}
}

// CheckConsistency returns the sum of balances and the sum of entry amounts.
func (r *LedgerRepository) CheckConsistency(_ context.Context) (decimal.Decimal, decimal.Decimal, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	totalBalance := decimal.Zero
	for _, a := range r.store.accounts {
		totalBalance = totalBalance.Add(a.Balance)
	}

	return totalBalance, domain.SumAmounts(r.store.entries), nil
}
