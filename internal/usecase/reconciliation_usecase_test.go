package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gowallet/internal/domain"
	"github.com/iho/gowallet/internal/usecase"
)

type stubAccountRepository struct {
	getByIDFn func(ctx context.Context, id string) (*domain.Account, error)
	listFn    func(ctx context.Context, limit, offset int) ([]*domain.Account, error)
}

func (s *stubAccountRepository) Create(context.Context, *domain.Account) error { return nil }
func (s *stubAccountRepository) CreateTx(context.Context, usecase.Transaction, *domain.Account) error {
	return nil
}
func (s *stubAccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	return s.getByIDFn(ctx, id)
}
func (s *stubAccountRepository) GetByExternalRef(context.Context, string) (*domain.Account, error) {
	return nil, domain.ErrAccountNotFound
}
func (s *stubAccountRepository) GetByIDForUpdate(context.Context, usecase.Transaction, string) (*domain.Account, error) {
	return nil, errors.New("not implemented")
}
func (s *stubAccountRepository) GetByIDsForUpdate(context.Context, usecase.Transaction, []string) ([]*domain.Account, error) {
	return nil, errors.New("not implemented")
}
func (s *stubAccountRepository) UpdateBalance(context.Context, usecase.Transaction, string, decimal.Decimal, int64, time.Time) error {
	return errors.New("not implemented")
}
func (s *stubAccountRepository) UpdateStatus(context.Context, usecase.Transaction, string, domain.AccountStatus, time.Time) error {
	return errors.New("not implemented")
}
func (s *stubAccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	return s.listFn(ctx, limit, offset)
}

type stubEntryRepository struct {
	sums map[string]decimal.Decimal
}

func (s *stubEntryRepository) Append(context.Context, usecase.Transaction, *domain.LedgerEntry) (int64, error) {
	return 0, errors.New("not implemented")
}
func (s *stubEntryRepository) ListByExternalRef(context.Context, string) ([]*domain.LedgerEntry, error) {
	return nil, nil
}
func (s *stubEntryRepository) ListByExternalRefTx(context.Context, usecase.Transaction, string, string) ([]*domain.LedgerEntry, error) {
	return nil, nil
}
func (s *stubEntryRepository) ListByBetRefTx(context.Context, usecase.Transaction, string, string) ([]*domain.LedgerEntry, error) {
	return nil, nil
}
func (s *stubEntryRepository) ListByAccount(context.Context, string, int, int) ([]*domain.LedgerEntry, error) {
	return nil, nil
}
func (s *stubEntryRepository) SumByAccount(_ context.Context, accountID string) (decimal.Decimal, error) {
	return s.sums[accountID], nil
}

type stubLedgerRepository struct {
	checkFn func(ctx context.Context) (decimal.Decimal, decimal.Decimal, error)
}

func (s *stubLedgerRepository) CheckConsistency(ctx context.Context) (decimal.Decimal, decimal.Decimal, error) {
	return s.checkFn(ctx)
}

type recordingDrift struct {
	drifts map[string]float64
}

func (r *recordingDrift) RecordReconciliationDrift(accountID string, drift float64) {
	if r.drifts == nil {
		r.drifts = make(map[string]float64)
	}
	r.drifts[accountID] = drift
}

func balancedLedger() *stubLedgerRepository {
	return &stubLedgerRepository{
		checkFn: func(context.Context) (decimal.Decimal, decimal.Decimal, error) {
			return decimal.Zero, decimal.Zero, nil
		},
	}
}

func TestReconcileAccount(t *testing.T) {
	t.Parallel()

	account := &domain.Account{
		ID:      "acc-1",
		Balance: decimal.NewFromInt(150),
	}

	accountRepo := &stubAccountRepository{
		getByIDFn: func(context.Context, string) (*domain.Account, error) {
			return account, nil
		},
		listFn: func(context.Context, int, int) ([]*domain.Account, error) {
			return []*domain.Account{account}, nil
		},
	}
	entryRepo := &stubEntryRepository{sums: map[string]decimal.Decimal{"acc-1": decimal.RequireFromString("150.000000")}}

	uc := usecase.NewReconciliationUseCase(accountRepo, entryRepo, balancedLedger(), nil)

	result, err := uc.ReconcileAccount(context.Background(), "acc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.RecordedBalance.Equal(account.Balance) {
		t.Fatalf("expected balance %s, got %s", account.Balance, result.RecordedBalance)
	}

	if !result.IsReconciled {
		t.Fatal("expected account to be marked as reconciled")
	}

	if result.LastChecked.IsZero() {
		t.Fatal("expected LastChecked timestamp to be set")
	}
}

func TestReconcileAccount_DetectsDrift(t *testing.T) {
	t.Parallel()

	account := &domain.Account{ID: "acc-1", Balance: decimal.NewFromInt(120)}
	accountRepo := &stubAccountRepository{
		getByIDFn: func(context.Context, string) (*domain.Account, error) { return account, nil },
		listFn:    func(context.Context, int, int) ([]*domain.Account, error) { return nil, nil },
	}
	entryRepo := &stubEntryRepository{sums: map[string]decimal.Decimal{"acc-1": decimal.NewFromInt(100)}}
	drift := &recordingDrift{}

	uc := usecase.NewReconciliationUseCase(accountRepo, entryRepo, balancedLedger(), drift)

	result, err := uc.ReconcileAccount(context.Background(), "acc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.IsReconciled {
		t.Fatal("expected drift to be reported")
	}

	if !result.Difference.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("expected difference 20, got %s", result.Difference)
	}

	if drift.drifts["acc-1"] != 20 {
		t.Fatalf("expected drift metric 20, got %v", drift.drifts["acc-1"])
	}
}

func TestReconcileAccount_PropagatesError(t *testing.T) {
	t.Parallel()

	accountRepo := &stubAccountRepository{
		getByIDFn: func(context.Context, string) (*domain.Account, error) {
			return nil, fmt.Errorf("boom")
		},
		listFn: func(context.Context, int, int) ([]*domain.Account, error) {
			return nil, nil
		},
	}

	uc := usecase.NewReconciliationUseCase(accountRepo, &stubEntryRepository{}, balancedLedger(), nil)

	_, err := uc.ReconcileAccount(context.Background(), "missing")
	if err == nil || err.Error() != "boom" {
		t.Fatalf("expected propagated error, got %v", err)
	}
}

func TestReconcileAllAccounts(t *testing.T) {
	t.Parallel()

	accounts := []*domain.Account{
		{ID: "acc-1", Balance: decimal.NewFromInt(100)},
		{ID: "acc-2", Balance: decimal.NewFromInt(200)},
	}

	accountRepo := &stubAccountRepository{
		listFn: func(_ context.Context, _ int, offset int) ([]*domain.Account, error) {
			if offset > 0 {
				return nil, nil
			}
			return accounts, nil
		},
		getByIDFn: func(_ context.Context, id string) (*domain.Account, error) {
			for _, a := range accounts {
				if a.ID == id {
					return a, nil
				}
			}
			return nil, fmt.Errorf("not found")
		},
	}

	uc := usecase.NewReconciliationUseCase(accountRepo, &stubEntryRepository{}, balancedLedger(), nil)

	results, err := uc.ReconcileAllAccounts(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(results) != len(accounts) {
		t.Fatalf("expected %d results, got %d", len(accounts), len(results))
	}
}

func TestCheckLedgerConsistency(t *testing.T) {
	t.Parallel()

	okLedger := &stubLedgerRepository{
		checkFn: func(context.Context) (decimal.Decimal, decimal.Decimal, error) {
			return decimal.NewFromInt(500), decimal.NewFromInt(500), nil
		},
	}

	accountRepo := &stubAccountRepository{
		getByIDFn: func(context.Context, string) (*domain.Account, error) { return nil, errors.New("unused") },
		listFn:    func(context.Context, int, int) ([]*domain.Account, error) { return nil, nil },
	}

	uc := usecase.NewReconciliationUseCase(accountRepo, &stubEntryRepository{}, okLedger, nil)
	if err := uc.CheckLedgerConsistency(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	badLedger := &stubLedgerRepository{
		checkFn: func(context.Context) (decimal.Decimal, decimal.Decimal, error) {
			return decimal.NewFromInt(100), decimal.NewFromInt(50), nil
		},
	}

	uc = usecase.NewReconciliationUseCase(accountRepo, &stubEntryRepository{}, badLedger, nil)
	if err := uc.CheckLedgerConsistency(context.Background()); !errors.Is(err, usecase.ErrInconsistentLedger) {
		t.Fatalf("expected ErrInconsistentLedger, got %v", err)
	}
}

func TestGenerateReconciliationReport(t *testing.T) {
	t.Parallel()

	accounts := []*domain.Account{
		{ID: "r1", Balance: decimal.NewFromInt(10)},
		{ID: "r2", Balance: decimal.NewFromInt(20)},
	}

	accountRepo := &stubAccountRepository{
		listFn: func(_ context.Context, _ int, offset int) ([]*domain.Account, error) {
			if offset > 0 {
				return nil, nil
			}
			return accounts, nil
		},
		getByIDFn: func(_ context.Context, id string) (*domain.Account, error) {
			for _, a := range accounts {
				if a.ID == id {
					return a, nil
				}
			}
			return nil, fmt.Errorf("missing %s", id)
		},
	}
	entryRepo := &stubEntryRepository{sums: map[string]decimal.Decimal{
		"r1": decimal.NewFromInt(10),
		"r2": decimal.NewFromInt(15),
	}}

	ledgerRepo := &stubLedgerRepository{
		checkFn: func(context.Context) (decimal.Decimal, decimal.Decimal, error) {
			return decimal.NewFromInt(30), decimal.NewFromInt(30), nil
		},
	}

	uc := usecase.NewReconciliationUseCase(accountRepo, entryRepo, ledgerRepo, nil)

	report, err := uc.GenerateReconciliationReport(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.TotalAccounts != len(accounts) {
		t.Fatalf("expected total accounts %d, got %d", len(accounts), report.TotalAccounts)
	}

	if report.ReconciledAccounts != 1 || len(report.Discrepancies) != 1 || report.Discrepancies[0].AccountID != "r2" {
		t.Fatalf("expected r2 to be the only discrepancy, got %+v", report.Discrepancies)
	}

	if !report.LedgerConsistent {
		t.Fatal("expected ledger to be marked consistent")
	}

	if report.CheckedAt.IsZero() {
		t.Fatal("expected CheckedAt timestamp")
	}
}
