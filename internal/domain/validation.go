package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation errors
var (
	ErrInvalidAccountName = errors.New("invalid account name")
	ErrInvalidExternalRef = errors.New("invalid external reference")
	ErrAmountTooLarge     = errors.New("amount exceeds maximum allowed")
	ErrAmountTooPrecise   = errors.New("amount has too many decimal places")
	ErrMetadataTooLarge   = errors.New("metadata size exceeds limit")
)

// Validation constants
const (
	MaxAccountNameLength = 255
	MinAccountNameLength = 1
	MaxExternalRefLength = 128
	MaxMetadataSize      = 10240 // 10KB
	MaxAmount            = "1000000000000"

	// AmountScale is the number of fractional digits stored for money.
	AmountScale = 6
)

var maxAmount = decimal.RequireFromString(MaxAmount)

// ValidateAccountName validates account name
func ValidateAccountName(name string) error {
	name = strings.TrimSpace(name)

	if len(name) < MinAccountNameLength {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidAccountName)
	}

	if len(name) > MaxAccountNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidAccountName, MaxAccountNameLength)
	}

	return nil
}

// ValidateExternalRef validates a provider or platform reference.
func ValidateExternalRef(ref string) error {
	if strings.TrimSpace(ref) == "" {
		return fmt.Errorf("%w: reference cannot be empty", ErrInvalidExternalRef)
	}

	if len(ref) > MaxExternalRefLength {
		return fmt.Errorf("%w: reference exceeds %d characters", ErrInvalidExternalRef, MaxExternalRefLength)
	}

	return nil
}

// ValidateAmount validates a strictly positive amount.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	return validateMagnitude(amount)
}

// ValidateSettleAmount validates a settlement amount, which may be zero.
func ValidateSettleAmount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("%w: settlement cannot be negative", ErrInvalidAmount)
	}

	return validateMagnitude(amount)
}

func validateMagnitude(amount decimal.Decimal) error {
	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrAmountTooLarge, MaxAmount)
	}

	if !amount.Equal(amount.Truncate(AmountScale)) {
		return fmt.Errorf("%w: at most %d allowed", ErrAmountTooPrecise, AmountScale)
	}

	return nil
}

// ValidateMetadata validates metadata size
func ValidateMetadata(metadata map[string]any) error {
	if metadata == nil {
		return nil
	}

	size := 0
	for k, v := range metadata {
		size += len(k)
		size += len(fmt.Sprintf("%v", v))
	}

	if size > MaxMetadataSize {
		return fmt.Errorf("%w: metadata size %d bytes exceeds limit of %d bytes", ErrMetadataTooLarge, size, MaxMetadataSize)
	}

	return nil
}

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(limit, offset int) (int, int, error) {
	const MaxPageSize = 1000
	const DefaultPageSize = 50

	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset, nil
}
