package memory

import (
	"context"
	"sync"

	"github.com/iho/gowallet/internal/domain"
)

type indexSlot struct {
	result *domain.OperationResult
}

// IdempotencyIndex implements usecase.IdempotencyIndex in process memory.
type IdempotencyIndex struct {
	mu    sync.Mutex
	slots map[entryKey]*indexSlot
}

// NewIdempotencyIndex creates an empty index.
func NewIdempotencyIndex() *IdempotencyIndex {
	return &IdempotencyIndex{slots: make(map[entryKey]*indexSlot)}
}

// CheckOrReserve reserves (ref, kind) if free.
func (i *IdempotencyIndex) CheckOrReserve(_ context.Context, externalTxnRef string, kind domain.OpKind) (bool, *domain.OperationResult, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	key := entryKey{externalTxnRef, kind}
	if slot, ok := i.slots[key]; ok {
		return true, slot.result, nil
	}

	i.slots[key] = &indexSlot{}
	return false, nil, nil
}

// Commit stores the result for (ref, kind).
func (i *IdempotencyIndex) Commit(_ context.Context, externalTxnRef string, kind domain.OpKind, result *domain.OperationResult) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.slots[entryKey{externalTxnRef, kind}] = &indexSlot{result: result}
	return nil
}

// Release drops a reservation that has not been committed.
func (i *IdempotencyIndex) Release(_ context.Context, externalTxnRef string, kind domain.OpKind) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	key := entryKey{externalTxnRef, kind}
	if slot, ok := i.slots[key]; ok && slot.result == nil {
		delete(i.slots, key)
	}
	return nil
}

// Len reports how many keys are reserved or committed.
func (i *IdempotencyIndex) Len() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.slots)
}
