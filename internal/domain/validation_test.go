package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestValidateAccountName(t *testing.T) {
	t.Parallel()

	t.Run("valid name", func(t *testing.T) {
		if err := ValidateAccountName("Master Agent 7"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("empty name rejected", func(t *testing.T) {
		err := ValidateAccountName("   ")
		if !errors.Is(err, ErrInvalidAccountName) {
			t.Fatalf("expected ErrInvalidAccountName, got %v", err)
		}
	})

	t.Run("name too long", func(t *testing.T) {
		tooLong := strings.Repeat("a", MaxAccountNameLength+1)
		err := ValidateAccountName(tooLong)
		if !errors.Is(err, ErrInvalidAccountName) {
			t.Fatalf("expected ErrInvalidAccountName, got %v", err)
		}
	})
}

func TestValidateExternalRef(t *testing.T) {
	t.Parallel()

	if err := ValidateExternalRef("P0001"); err != nil {
		t.Fatalf("expected valid ref, got %v", err)
	}

	if err := ValidateExternalRef(""); !errors.Is(err, ErrInvalidExternalRef) {
		t.Fatalf("expected ErrInvalidExternalRef for empty ref, got %v", err)
	}

	if err := ValidateExternalRef(strings.Repeat("x", MaxExternalRefLength+1)); !errors.Is(err, ErrInvalidExternalRef) {
		t.Fatalf("expected ErrInvalidExternalRef for long ref, got %v", err)
	}
}

func TestValidateAmount(t *testing.T) {
	t.Parallel()

	if err := ValidateAmount(decimal.RequireFromString("100.25")); err != nil {
		t.Fatalf("expected valid amount, got %v", err)
	}

	if err := ValidateAmount(decimal.Zero); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for zero, got %v", err)
	}

	if err := ValidateAmount(decimal.RequireFromString("0.0000001")); !errors.Is(err, ErrAmountTooPrecise) {
		t.Fatalf("expected ErrAmountTooPrecise, got %v", err)
	}

	huge := decimal.RequireFromString(MaxAmount).Add(decimal.NewFromInt(1))
	if err := ValidateAmount(huge); !errors.Is(err, ErrAmountTooLarge) {
		t.Fatalf("expected ErrAmountTooLarge, got %v", err)
	}
}

func TestValidateSettleAmount(t *testing.T) {
	t.Parallel()

	if err := ValidateSettleAmount(decimal.Zero); err != nil {
		t.Fatalf("expected zero settlement to be valid, got %v", err)
	}

	if err := ValidateSettleAmount(decimal.NewFromInt(-1)); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for negative settlement, got %v", err)
	}
}

func TestValidateMetadata(t *testing.T) {
	t.Parallel()

	if err := ValidateMetadata(nil); err != nil {
		t.Fatalf("expected nil metadata to be valid, got %v", err)
	}

	big := map[string]any{"blob": strings.Repeat("x", MaxMetadataSize+1)}
	if err := ValidateMetadata(big); !errors.Is(err, ErrMetadataTooLarge) {
		t.Fatalf("expected ErrMetadataTooLarge, got %v", err)
	}
}

func TestValidatePagination(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name                 string
		limit, offset        int
		wantLimit, wantOffst int
	}{
		{"defaults", 0, -5, 50, 0},
		{"caps limit", 5000, 10, 1000, 10},
		{"keeps valid", 20, 40, 20, 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limit, offset, err := ValidatePagination(tt.limit, tt.offset)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if limit != tt.wantLimit || offset != tt.wantOffst {
				t.Fatalf("got (%d, %d), want (%d, %d)", limit, offset, tt.wantLimit, tt.wantOffst)
			}
		})
	}
}
