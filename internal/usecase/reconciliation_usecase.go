package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DriftRecorder receives the absolute drift found for an account.
type DriftRecorder interface {
	RecordReconciliationDrift(accountID string, drift float64)
}

// ReconciliationUseCase handles balance reconciliation operations
type ReconciliationUseCase struct {
	accountRepo AccountRepository
	entryRepo   EntryRepository
	ledgerRepo  LedgerRepository
	drift       DriftRecorder
}

// NewReconciliationUseCase creates a new reconciliation use case. drift may be nil.
func NewReconciliationUseCase(
	accountRepo AccountRepository,
	entryRepo EntryRepository,
	ledgerRepo LedgerRepository,
	drift DriftRecorder,
) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		accountRepo: accountRepo,
		entryRepo:   entryRepo,
		ledgerRepo:  ledgerRepo,
		drift:       drift,
	}
}

// ReconciliationResult represents the result of a reconciliation check
type ReconciliationResult struct {
	AccountID         string
	RecordedBalance   decimal.Decimal
	CalculatedBalance decimal.Decimal
	Difference        decimal.Decimal
	IsReconciled      bool
	LastChecked       time.Time
}

// ReconcileAccount compares the stored balance of an account with the sum of
// its ledger entries.
func (uc *ReconciliationUseCase) ReconcileAccount(ctx context.Context, accountID string) (*ReconciliationResult, error) {
	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	calculated, err := uc.entryRepo.SumByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	difference := account.Balance.Sub(calculated)

	if uc.drift != nil {
		uc.drift.RecordReconciliationDrift(accountID, difference.Abs().InexactFloat64())
	}

	return &ReconciliationResult{
		AccountID:         accountID,
		RecordedBalance:   account.Balance,
		CalculatedBalance: calculated,
		Difference:        difference,
		IsReconciled:      difference.IsZero(),
		LastChecked:       time.Now().UTC(),
	}, nil
}

// ReconcileAllAccounts reconciles all accounts in the system
func (uc *ReconciliationUseCase) ReconcileAllAccounts(ctx context.Context) ([]*ReconciliationResult, error) {
	const pageSize = 1000

	var results []*ReconciliationResult
	for offset := 0; ; offset += pageSize {
		accounts, err := uc.accountRepo.List(ctx, pageSize, offset)
		if err != nil {
			return nil, err
		}

		for _, account := range accounts {
			result, err := uc.ReconcileAccount(ctx, account.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to reconcile account %s: %w", account.ID, err)
			}
			results = append(results, result)
		}

		if len(accounts) < pageSize {
			break
		}
	}

	return results, nil
}

// CheckLedgerConsistency verifies that the sum of balances equals the sum of entries
func (uc *ReconciliationUseCase) CheckLedgerConsistency(ctx context.Context) error {
	totalBalance, totalAmount, err := uc.ledgerRepo.CheckConsistency(ctx)
	if err != nil {
		return err
	}

	if !totalBalance.Equal(totalAmount) {
		return fmt.Errorf(
			"%w: balances=%s entries=%s difference=%s",
			ErrInconsistentLedger,
			totalBalance.String(),
			totalAmount.String(),
			totalBalance.Sub(totalAmount).String(),
		)
	}

	return nil
}

// ReconciliationReport represents a full reconciliation report
type ReconciliationReport struct {
	TotalAccounts      int
	ReconciledAccounts int
	Discrepancies      []*ReconciliationResult
	LedgerConsistent   bool
	CheckedAt          time.Time
}

// GenerateReconciliationReport generates a comprehensive reconciliation report
func (uc *ReconciliationUseCase) GenerateReconciliationReport(ctx context.Context) (*ReconciliationReport, error) {
	// Reconcile all accounts
	results, err := uc.ReconcileAllAccounts(ctx)
	if err != nil {
		return nil, err
	}

	// Check ledger consistency
	ledgerErr := uc.CheckLedgerConsistency(ctx)

	// Build report
	report := &ReconciliationReport{
		TotalAccounts:    len(results),
		Discrepancies:    make([]*ReconciliationResult, 0),
		LedgerConsistent: ledgerErr == nil,
		CheckedAt:        time.Now().UTC(),
	}

	for _, result := range results {
		if result.IsReconciled {
			report.ReconciledAccounts++
		} else {
			report.Discrepancies = append(report.Discrepancies, result)
		}
	}

	return report, nil
}
