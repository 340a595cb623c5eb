package memory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/iho/gowallet/internal/domain"
	"github.com/iho/gowallet/internal/usecase"
)

// EntryRepository implements usecase.EntryRepository.
type EntryRepository struct {
	store *Store
}

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(store *Store) *EntryRepository {
	return &EntryRepository{store: store}
}

// Append stages an entry and assigns its id. Ids of rolled back entries are
// not reused.
func (r *EntryRepository) Append(_ context.Context, t usecase.Transaction, entry *domain.LedgerEntry) (int64, error) {
	tx, err := asTx(t)
	if err != nil {
		return 0, err
	}

	r.store.mu.Lock()
	r.store.nextEntryID++
	id := r.store.nextEntryID
	r.store.mu.Unlock()

	stored := *entry
	stored.ID = id
	tx.entries = append(tx.entries, &stored)

	return id, nil
}

// ListByExternalRef lists committed entries carrying a reference on any account.
func (r *EntryRepository) ListByExternalRef(_ context.Context, externalTxnRef string) ([]*domain.LedgerEntry, error) {
	return r.committed(func(e *domain.LedgerEntry) bool {
		return e.ExternalTxnRef == externalTxnRef
	}), nil
}

// ListByExternalRefTx lists an account's entries carrying a reference,
// including entries staged in tx.
func (r *EntryRepository) ListByExternalRefTx(_ context.Context, t usecase.Transaction, accountID, externalTxnRef string) ([]*domain.LedgerEntry, error) {
	return r.withStaged(t, func(e *domain.LedgerEntry) bool {
		return e.AccountID == accountID && e.ExternalTxnRef == externalTxnRef
	})
}

// ListByBetRefTx lists an account's entries sharing a bet reference,
// including entries staged in tx.
func (r *EntryRepository) ListByBetRefTx(_ context.Context, t usecase.Transaction, accountID, betRef string) ([]*domain.LedgerEntry, error) {
	return r.withStaged(t, func(e *domain.LedgerEntry) bool {
		return e.AccountID == accountID && e.BetRef == betRef
	})
}

// ListByAccount lists an account's entries, newest first.
func (r *EntryRepository) ListByAccount(_ context.Context, accountID string, limit, offset int) ([]*domain.LedgerEntry, error) {
	entries := r.committed(func(e *domain.LedgerEntry) bool {
		return e.AccountID == accountID
	})

	sort.Slice(entries, func(i, j int) bool { return entries[i].ID > entries[j].ID })

	return page(entries, limit, offset), nil
}

// SumByAccount replays an account's ledger.
func (r *EntryRepository) SumByAccount(_ context.Context, accountID string) (decimal.Decimal, error) {
	return domain.SumAmounts(r.committed(func(e *domain.LedgerEntry) bool {
		return e.AccountID == accountID
	})), nil
}

func (r *EntryRepository) committed(match func(*domain.LedgerEntry) bool) []*domain.LedgerEntry {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []*domain.LedgerEntry
	for _, e := range r.store.entries {
		if match(e) {
			c := *e
			out = append(out, &c)
		}
	}
	return out
}

func (r *EntryRepository) withStaged(t usecase.Transaction, match func(*domain.LedgerEntry) bool) ([]*domain.LedgerEntry, error) {
	tx, err := asTx(t)
	if err != nil {
		return nil, err
	}

	out := r.committed(match)
	for _, e := range tx.entries {
		if match(e) {
			c := *e
			out = append(out, &c)
		}
	}
	return out, nil
}
