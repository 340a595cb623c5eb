package usecase

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/iho/gowallet/internal/domain"
)

// EntryUseCase handles ledger entry queries.
type EntryUseCase struct {
	entryRepo EntryRepository
}

// NewEntryUseCase creates a new EntryUseCase.
func NewEntryUseCase(entryRepo EntryRepository) *EntryUseCase {
	return &EntryUseCase{
		entryRepo: entryRepo,
	}
}

// GetEntriesByAccountInput represents input for listing entries.
type GetEntriesByAccountInput struct {
	AccountID string
	Limit     int
	Offset    int
}

// GetEntriesByAccount lists entries for an account, newest first.
func (uc *EntryUseCase) GetEntriesByAccount(ctx context.Context, input GetEntriesByAccountInput) ([]*domain.LedgerEntry, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}

	if input.Limit > 100 {
		input.Limit = 100
	}

	return uc.entryRepo.ListByAccount(ctx, input.AccountID, input.Limit, input.Offset)
}

// GetEntriesByExternalRef lists every entry booked under a provider reference.
func (uc *EntryUseCase) GetEntriesByExternalRef(ctx context.Context, externalTxnRef string) ([]*domain.LedgerEntry, error) {
	return uc.entryRepo.ListByExternalRef(ctx, externalTxnRef)
}

// BalanceAsOf replays the ledger of an account.
func (uc *EntryUseCase) BalanceAsOf(ctx context.Context, accountID string) (decimal.Decimal, error) {
	return uc.entryRepo.SumByAccount(ctx, accountID)
}
