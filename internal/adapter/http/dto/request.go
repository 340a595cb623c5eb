package dto

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/iho/gowallet/internal/domain"
	"github.com/iho/gowallet/internal/usecase"
)

// CreateAccountRequest represents a request to create an account.
type CreateAccountRequest struct {
	ExternalRef          string  `json:"external_ref"`
	Name                 string  `json:"name"`
	Type                 string  `json:"type,omitempty"`
	AgentID              *string `json:"agent_id,omitempty"`
	AllowNegativeBalance bool    `json:"allow_negative_balance"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateAccountRequest) ToUseCaseInput(operator *domain.User, requestID string) usecase.CreateAccountInput {
	return usecase.CreateAccountInput{
		ExternalRef:          r.ExternalRef,
		Name:                 r.Name,
		Type:                 domain.AccountType(r.Type),
		AgentID:              r.AgentID,
		AllowNegativeBalance: r.AllowNegativeBalance,
		Operator:             operator,
		RequestID:            requestID,
	}
}

// SetStatusRequest bans or reactivates an account.
type SetStatusRequest struct {
	Status string `json:"status"`
}

// ToUseCaseInput converts to use case input.
func (r *SetStatusRequest) ToUseCaseInput(accountID string, operator *domain.User, requestID string) usecase.SetStatusInput {
	return usecase.SetStatusInput{
		AccountID: accountID,
		Status:    domain.AccountStatus(r.Status),
		Operator:  operator,
		RequestID: requestID,
	}
}

// CreateTransferRequest represents a request to move credit between accounts.
type CreateTransferRequest struct {
	FromAccountID string `json:"from_account_id"`
	ToAccountID   string `json:"to_account_id"`
	Amount        string `json:"amount"`
	Reason        string `json:"reason,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateTransferRequest) ToUseCaseInput(operator *domain.User, requestID string) (usecase.CreateTransferInput, error) {
	amount, err := decimal.NewFromString(r.Amount)
	if err != nil {
		return usecase.CreateTransferInput{}, fmt.Errorf("%w: amount %q", domain.ErrInvalidAmount, r.Amount)
	}

	return usecase.CreateTransferInput{
		FromAccountID: r.FromAccountID,
		ToAccountID:   r.ToAccountID,
		Amount:        amount,
		Reason:        r.Reason,
		Operator:      operator,
		RequestID:     requestID,
	}, nil
}
