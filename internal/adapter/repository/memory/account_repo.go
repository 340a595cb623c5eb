package memory

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gowallet/internal/domain"
	"github.com/iho/gowallet/internal/usecase"
)

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	store *Store
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(store *Store) *AccountRepository {
	return &AccountRepository{store: store}
}

// Create inserts an account outside of any transaction.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	tx, err := r.store.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := r.CreateTx(ctx, tx, account); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// CreateTx stages an account insert.
func (r *AccountRepository) CreateTx(_ context.Context, t usecase.Transaction, account *domain.Account) error {
	tx, err := asTx(t)
	if err != nil {
		return err
	}

	tx.created = append(tx.created, copyAccount(account))
	return nil
}

// GetByID retrieves a committed account.
func (r *AccountRepository) GetByID(_ context.Context, id string) (*domain.Account, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	a, ok := r.store.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return copyAccount(a), nil
}

// GetByExternalRef retrieves a committed account by its platform reference.
func (r *AccountRepository) GetByExternalRef(_ context.Context, externalRef string) (*domain.Account, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	id, ok := r.store.byRef[externalRef]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return copyAccount(r.store.accounts[id]), nil
}

// GetByIDForUpdate locks the account for the rest of the transaction.
func (r *AccountRepository) GetByIDForUpdate(ctx context.Context, t usecase.Transaction, id string) (*domain.Account, error) {
	tx, err := asTx(t)
	if err != nil {
		return nil, err
	}

	if !tx.locked[id] {
		if err := r.store.lockAccount(ctx, id); err != nil {
			return nil, err
		}
		tx.locked[id] = true
	}

	if a, ok := tx.accounts[id]; ok {
		return copyAccount(a), nil
	}

	for _, a := range tx.created {
		if a.ID == id {
			return copyAccount(a), nil
		}
	}

	return r.GetByID(ctx, id)
}

// GetByIDsForUpdate locks several accounts in the order given. Missing
// accounts are skipped.
func (r *AccountRepository) GetByIDsForUpdate(ctx context.Context, t usecase.Transaction, ids []string) ([]*domain.Account, error) {
	accounts := make([]*domain.Account, 0, len(ids))
	for _, id := range ids {
		a, err := r.GetByIDForUpdate(ctx, t, id)
		if errors.Is(err, domain.ErrAccountNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, nil
}

// UpdateBalance stages a balance change guarded by the account version.
func (r *AccountRepository) UpdateBalance(
	ctx context.Context,
	t usecase.Transaction,
	id string,
	balance decimal.Decimal,
	expectedVersion int64,
	updatedAt time.Time,
) error {
	tx, err := asTx(t)
	if err != nil {
		return err
	}

	current, err := r.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		return err
	}

	if current.Version != expectedVersion {
		return domain.ErrVersionConflict
	}

	current.Balance = balance
	current.Version++
	current.UpdatedAt = updatedAt
	tx.accounts[id] = current

	return nil
}

// UpdateStatus stages a status change.
func (r *AccountRepository) UpdateStatus(ctx context.Context, t usecase.Transaction, id string, status domain.AccountStatus, updatedAt time.Time) error {
	tx, err := asTx(t)
	if err != nil {
		return err
	}

	current, err := r.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		return err
	}

	current.Status = status
	current.UpdatedAt = updatedAt
	tx.accounts[id] = current

	return nil
}

// List lists committed accounts ordered by creation time.
func (r *AccountRepository) List(_ context.Context, limit, offset int) ([]*domain.Account, error) {
	r.store.mu.RLock()
	all := make([]*domain.Account, 0, len(r.store.accounts))
	for _, a := range r.store.accounts {
		all = append(all, copyAccount(a))
	}
	r.store.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID < all[j].ID
		}
		return all[i].CreatedAt.Before(all[j].CreatedAt)
	})

	return page(all, limit, offset), nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if limit <= 0 || end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
