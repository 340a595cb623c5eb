package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transfer represents a credit movement between two accounts of the agent
// hierarchy, initiated by an operator.
type Transfer struct {
	CreatedAt     time.Time
	ID            string
	FromAccountID string
	ToAccountID   string
	Amount        decimal.Decimal
	Reason        string
	OperatorID    string
}

// Validate validates transfer request.
func (t *Transfer) Validate() error {
	if t.FromAccountID == t.ToAccountID {
		return ErrSameAccount
	}

	if t.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	return nil
}
