package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountStatus is the lifecycle state of an account.
type AccountStatus string

const (
	AccountStatusActive AccountStatus = "active"
	AccountStatusBanned AccountStatus = "banned"
)

// IsValid reports whether s is a known status.
func (s AccountStatus) IsValid() bool {
	return s == AccountStatusActive || s == AccountStatusBanned
}

// AccountType places an account in the agent hierarchy.
type AccountType string

const (
	AccountTypeOwner  AccountType = "owner"
	AccountTypeMaster AccountType = "master"
	AccountTypeAgent  AccountType = "agent"
	AccountTypePlayer AccountType = "player"
)

// IsValid reports whether t is a known account type.
func (t AccountType) IsValid() bool {
	switch t {
	case AccountTypeOwner, AccountTypeMaster, AccountTypeAgent, AccountTypePlayer:
		return true
	}
	return false
}

// Account is a wallet holding a balance for one platform user.
type Account struct {
	ID                   string
	ExternalRef          string
	Name                 string
	Type                 AccountType
	AgentID              *string
	Balance              decimal.Decimal
	Status               AccountStatus
	AllowNegativeBalance bool
	Version              int64
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// IsActive reports whether the account may take new debits.
func (a *Account) IsActive() bool {
	return a.Status == AccountStatusActive
}

// ValidateDebit checks if account can be debited by amount.
func (a *Account) ValidateDebit(amount decimal.Decimal) error {
	return a.ValidateDelta(amount.Neg())
}

// ValidateDelta checks that applying a signed amount keeps the balance within bounds.
func (a *Account) ValidateDelta(delta decimal.Decimal) error {
	if !a.AllowNegativeBalance && a.Balance.Add(delta).IsNegative() {
		return ErrInsufficientFunds
	}
	return nil
}
