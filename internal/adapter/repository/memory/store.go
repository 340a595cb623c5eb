// Package memory is an in-process implementation of the wallet repositories.
// It keeps the locking and all-or-nothing commit behaviour of the Postgres
// store so the engine can run without a database.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/iho/gowallet/internal/domain"
	"github.com/iho/gowallet/internal/usecase"
)

// ErrTxClosed is returned when a finished transaction is used again.
var ErrTxClosed = errors.New("memory: transaction already closed")

// ErrUniqueViolation mirrors a unique constraint failure. Like Postgres
// 23505 it is retryable.
var ErrUniqueViolation = fmt.Errorf("memory: unique constraint violated: %w", domain.ErrWriteConflict)

type entryKey struct {
	ref  string
	kind domain.OpKind
}

// Store holds committed state and hands out transactions.
type Store struct {
	mu sync.RWMutex

	accounts  map[string]*domain.Account
	byRef     map[string]string
	entries   []*domain.LedgerEntry
	entryKeys map[entryKey]int64
	reversals map[int64]int64
	records   map[entryKey]*domain.IdempotencyRecord
	transfers map[string]*domain.Transfer
	outbox    []*domain.OutboxEvent
	audit     []*domain.AuditLog
	events    []*domain.SeamlessEvent

	nextEntryID int64
	nextEventID int64

	locksMu sync.Mutex
	locks   map[string]chan struct{}

	commitHook func() error
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		accounts:  make(map[string]*domain.Account),
		byRef:     make(map[string]string),
		entryKeys: make(map[entryKey]int64),
		reversals: make(map[int64]int64),
		records:   make(map[entryKey]*domain.IdempotencyRecord),
		transfers: make(map[string]*domain.Transfer),
		locks:     make(map[string]chan struct{}),
	}
}

// SetCommitHook installs a function run at the start of every commit. A
// non-nil error aborts the commit and discards the transaction.
func (s *Store) SetCommitHook(hook func() error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commitHook = hook
}

// Begin starts a transaction.
func (s *Store) Begin(_ context.Context) (usecase.Transaction, error) {
	return &Tx{
		store:    s,
		locked:   make(map[string]bool),
		accounts: make(map[string]*domain.Account),
	}, nil
}

func (s *Store) lockAccount(ctx context.Context, id string) error {
	s.locksMu.Lock()
	ch, ok := s.locks[id]
	if !ok {
		ch = make(chan struct{}, 1)
		s.locks[id] = ch
	}
	s.locksMu.Unlock()

	select {
	case ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store) unlockAccount(id string) {
	s.locksMu.Lock()
	ch := s.locks[id]
	s.locksMu.Unlock()

	<-ch
}

// Tx stages writes until Commit. Reads made through a Tx see its own
// staged writes.
type Tx struct {
	store *Store

	locked    map[string]bool
	accounts  map[string]*domain.Account
	created   []*domain.Account
	entries   []*domain.LedgerEntry
	records   []*domain.IdempotencyRecord
	transfers []*domain.Transfer
	outbox    []*domain.OutboxEvent
	audit     []*domain.AuditLog

	done bool
}

// Commit applies every staged write atomically and releases the account locks.
func (tx *Tx) Commit(_ context.Context) error {
	if tx.done {
		return ErrTxClosed
	}
	defer tx.finish()

	s := tx.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.commitHook != nil {
		if err := s.commitHook(); err != nil {
			return err
		}
	}

	if err := tx.checkConstraints(); err != nil {
		return err
	}

	for _, a := range tx.created {
		s.accounts[a.ID] = copyAccount(a)
		s.byRef[a.ExternalRef] = a.ID
	}
	for id, a := range tx.accounts {
		s.accounts[id] = copyAccount(a)
	}
	for _, e := range tx.entries {
		s.entries = append(s.entries, e)
		s.entryKeys[entryKey{e.ExternalTxnRef, e.OpKind}] = e.ID
		if e.OpKind.IsReversal() && e.CorrelatedEntryID != nil {
			s.reversals[*e.CorrelatedEntryID] = e.ID
		}
	}
	for _, r := range tx.records {
		s.records[entryKey{r.ExternalTxnRef, r.OpKind}] = r
	}
	for _, t := range tx.transfers {
		s.transfers[t.ID] = t
	}
	s.outbox = append(s.outbox, tx.outbox...)
	s.audit = append(s.audit, tx.audit...)

	return nil
}

// checkConstraints runs with the store lock held.
func (tx *Tx) checkConstraints() error {
	s := tx.store

	for _, a := range tx.created {
		if _, ok := s.accounts[a.ID]; ok {
			return fmt.Errorf("%w: account %s", ErrUniqueViolation, a.ID)
		}
		if _, ok := s.byRef[a.ExternalRef]; ok {
			return domain.ErrAccountExists
		}
	}

	for _, e := range tx.entries {
		if _, ok := s.entryKeys[entryKey{e.ExternalTxnRef, e.OpKind}]; ok {
			return fmt.Errorf("%w: entry %s/%s", ErrUniqueViolation, e.ExternalTxnRef, e.OpKind)
		}
		if e.OpKind.IsReversal() && e.CorrelatedEntryID != nil {
			if _, ok := s.reversals[*e.CorrelatedEntryID]; ok {
				return fmt.Errorf("%w: entry %d already reversed", ErrUniqueViolation, *e.CorrelatedEntryID)
			}
		}
	}

	for _, r := range tx.records {
		if _, ok := s.records[entryKey{r.ExternalTxnRef, r.OpKind}]; ok {
			return fmt.Errorf("%w: idempotency record %s/%s", ErrUniqueViolation, r.ExternalTxnRef, r.OpKind)
		}
	}

	return nil
}

// Rollback discards staged writes. It is a no-op after Commit.
func (tx *Tx) Rollback(_ context.Context) error {
	if tx.done {
		return nil
	}
	tx.finish()
	return nil
}

func (tx *Tx) finish() {
	tx.done = true
	for id := range tx.locked {
		tx.store.unlockAccount(id)
	}
	tx.locked = nil
}

func asTx(t usecase.Transaction) (*Tx, error) {
	tx, ok := t.(*Tx)
	if !ok {
		return nil, fmt.Errorf("memory: unexpected transaction type %T", t)
	}
	if tx.done {
		return nil, ErrTxClosed
	}
	return tx, nil
}

func copyAccount(a *domain.Account) *domain.Account {
	c := *a
	return &c
}
