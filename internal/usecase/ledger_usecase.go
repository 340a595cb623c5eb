package usecase

import (
	"context"
	"errors"
)

var (
	// ErrInconsistentLedger is returned when account balances do not match the entries.
	ErrInconsistentLedger = errors.New("ledger is inconsistent: balances do not equal entry totals")
)

// LedgerUseCase handles ledger-wide operations.
type LedgerUseCase struct {
	ledgerRepo LedgerRepository
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(ledgerRepo LedgerRepository) *LedgerUseCase {
	return &LedgerUseCase{
		ledgerRepo: ledgerRepo,
	}
}

// CheckConsistency verifies that the sum of all balances equals the sum of
// all ledger entry amounts.
func (uc *LedgerUseCase) CheckConsistency(ctx context.Context) (bool, error) {
	totalBalance, totalAmount, err := uc.ledgerRepo.CheckConsistency(ctx)
	if err != nil {
		return false, err
	}

	// Game wins and losses move money in and out of the hierarchy, so the
	// totals are not zero. They must agree with each other.
	if !totalBalance.Equal(totalAmount) {
		return false, ErrInconsistentLedger
	}

	return true, nil
}
