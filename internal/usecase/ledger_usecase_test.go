package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestLedgerUseCase_CheckConsistency(t *testing.T) {
	tests := []struct {
		name        string
		repo        *fakeLedgerRepository
		want        bool
		expectedErr error
	}{
		{
			name: "empty ledger",
			repo: &fakeLedgerRepository{
				totalBalance: decimal.Zero,
				totalAmount:  decimal.Zero,
			},
			want: true,
		},
		{
			name: "balances match entries after game play",
			repo: &fakeLedgerRepository{
				totalBalance: decimal.RequireFromString("1520.50"),
				totalAmount:  decimal.RequireFromString("1520.5"),
			},
			want: true,
		},
		{
			name: "repo error surfaces",
			repo: &fakeLedgerRepository{
				err: errors.New("db down"),
			},
			want:        false,
			expectedErr: errors.New("db down"),
		},
		{
			name: "balance drifted above entries",
			repo: &fakeLedgerRepository{
				totalBalance: decimal.NewFromInt(110),
				totalAmount:  decimal.NewFromInt(100),
			},
			want:        false,
			expectedErr: ErrInconsistentLedger,
		},
		{
			name: "entries without balance movement",
			repo: &fakeLedgerRepository{
				totalBalance: decimal.Zero,
				totalAmount:  decimal.NewFromInt(1),
			},
			want:        false,
			expectedErr: ErrInconsistentLedger,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := NewLedgerUseCase(tt.repo)
			got, err := uc.CheckConsistency(context.Background())

			if tt.expectedErr != nil {
				if err == nil || err.Error() != tt.expectedErr.Error() {
					t.Fatalf("expected error %v, got %v", tt.expectedErr, err)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got != tt.want {
				t.Fatalf("CheckConsistency() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLedgerUseCase_RepositoryInvoked(t *testing.T) {
	repo := &fakeLedgerRepository{}
	uc := NewLedgerUseCase(repo)

	if _, err := uc.CheckConsistency(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if repo.calls != 1 {
		t.Fatalf("expected CheckConsistency to call repository once, got %d", repo.calls)
	}
}

type fakeLedgerRepository struct {
	totalBalance decimal.Decimal
	totalAmount  decimal.Decimal
	err          error
	calls        int
}

func (f *fakeLedgerRepository) CheckConsistency(ctx context.Context) (decimal.Decimal, decimal.Decimal, error) {
	f.calls++
	return f.totalBalance, f.totalAmount, f.err
}
