package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestAccount_ValidateDebit(t *testing.T) {
	tests := []struct {
		name        string
		balance     decimal.Decimal
		debitAmount decimal.Decimal
		allowNeg    bool
		expectError bool
	}{
		{
			name:        "house account may go negative",
			balance:     decimal.NewFromInt(100),
			allowNeg:    true,
			debitAmount: decimal.NewFromInt(150),
			expectError: false,
		},
		{
			name:        "player debit more than balance",
			balance:     decimal.NewFromInt(100),
			allowNeg:    false,
			debitAmount: decimal.NewFromInt(150),
			expectError: true,
		},
		{
			name:        "player debit exact balance",
			balance:     decimal.NewFromInt(100),
			allowNeg:    false,
			debitAmount: decimal.NewFromInt(100),
			expectError: false,
		},
		{
			name:        "player debit less than balance",
			balance:     decimal.RequireFromString("100.50"),
			allowNeg:    false,
			debitAmount: decimal.RequireFromString("0.51"),
			expectError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc := &Account{
				Balance:              tt.balance,
				AllowNegativeBalance: tt.allowNeg,
			}

			err := acc.ValidateDebit(tt.debitAmount)

			if tt.expectError && !errors.Is(err, ErrInsufficientFunds) {
				t.Errorf("expected ErrInsufficientFunds, got %v", err)
			}

			if !tt.expectError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestAccount_ValidateDeltaCredit(t *testing.T) {
	acc := &Account{Balance: decimal.Zero}
	if err := acc.ValidateDelta(decimal.NewFromInt(25)); err != nil {
		t.Fatalf("credit should always be allowed, got %v", err)
	}
}

func TestAccount_IsActive(t *testing.T) {
	acc := &Account{Status: AccountStatusActive}
	if !acc.IsActive() {
		t.Fatal("expected active account")
	}

	acc.Status = AccountStatusBanned
	if acc.IsActive() {
		t.Fatal("expected banned account to be inactive")
	}
}

func TestAccountTypeAndStatus_IsValid(t *testing.T) {
	if !AccountTypeAgent.IsValid() || AccountType("croupier").IsValid() {
		t.Fatal("unexpected account type validity")
	}
	if !AccountStatusBanned.IsValid() || AccountStatus("frozen").IsValid() {
		t.Fatal("unexpected account status validity")
	}
}
