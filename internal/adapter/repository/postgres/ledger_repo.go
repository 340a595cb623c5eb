package postgres

import (
	"context"

	"github.com/shopspring/decimal"
)

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	db DB
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(db DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// CheckConsistency returns the sum of all balances and the sum of all entry
// amounts, read in a single statement.
func (r *LedgerRepository) CheckConsistency(ctx context.Context) (decimal.Decimal, decimal.Decimal, error) {
	var totalBalance, totalAmount string

	err := r.db.QueryRow(ctx, `
		SELECT
			(SELECT COALESCE(SUM(balance), 0) FROM accounts)::text,
			(SELECT COALESCE(SUM(amount), 0) FROM ledger_entries)::text
	`).Scan(&totalBalance, &totalAmount)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	balance, err := parseDecimal(totalBalance)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	amount, err := parseDecimal(totalAmount)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	return balance, amount, nil
}

func parseDecimal(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}
