package dto

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/gowallet/internal/domain"
	"github.com/iho/gowallet/internal/usecase"
)

var testOperator = &domain.User{ID: "op-1", Name: "Ops", Role: domain.RoleOperator}

func TestCreateAccountRequest_ToUseCaseInput(t *testing.T) {
	agent := "acc-agent"
	req := &CreateAccountRequest{
		ExternalRef:          "P1",
		Name:                 "Player One",
		Type:                 "player",
		AgentID:              &agent,
		AllowNegativeBalance: true,
	}

	got := req.ToUseCaseInput(testOperator, "req-1")
	want := usecase.CreateAccountInput{
		ExternalRef:          "P1",
		Name:                 "Player One",
		Type:                 domain.AccountTypePlayer,
		AgentID:              &agent,
		AllowNegativeBalance: true,
		Operator:             testOperator,
		RequestID:            "req-1",
	}

	if got != want {
		t.Fatalf("ToUseCaseInput() = %+v, want %+v", got, want)
	}
}

func TestSetStatusRequest_ToUseCaseInput(t *testing.T) {
	req := &SetStatusRequest{Status: "banned"}

	got := req.ToUseCaseInput("acc-1", testOperator, "req-2")
	if got.AccountID != "acc-1" || got.Status != domain.AccountStatusBanned || got.Operator != testOperator || got.RequestID != "req-2" {
		t.Fatalf("unexpected input: %+v", got)
	}
}

func TestCreateTransferRequest_ToUseCaseInput(t *testing.T) {
	tests := []struct {
		name        string
		request     *CreateTransferRequest
		want        usecase.CreateTransferInput
		expectError bool
	}{
		{
			name: "valid amount",
			request: &CreateTransferRequest{
				FromAccountID: "from",
				ToAccountID:   "to",
				Amount:        "12.34",
				Reason:        "top up",
			},
			want: usecase.CreateTransferInput{
				FromAccountID: "from",
				ToAccountID:   "to",
				Amount:        decimal.RequireFromString("12.34"),
				Reason:        "top up",
				Operator:      testOperator,
				RequestID:     "req-3",
			},
		},
		{
			name: "invalid amount",
			request: &CreateTransferRequest{
				FromAccountID: "from",
				ToAccountID:   "to",
				Amount:        "twelve",
			},
			expectError: true,
		},
		{
			name: "empty amount",
			request: &CreateTransferRequest{
				FromAccountID: "from",
				ToAccountID:   "to",
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.request.ToUseCaseInput(testOperator, "req-3")
			if tt.expectError {
				if !errors.Is(err, domain.ErrInvalidAmount) {
					t.Fatalf("expected ErrInvalidAmount, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got.FromAccountID != tt.want.FromAccountID || got.ToAccountID != tt.want.ToAccountID ||
				!got.Amount.Equal(tt.want.Amount) || got.Reason != tt.want.Reason ||
				got.Operator != tt.want.Operator || got.RequestID != tt.want.RequestID {
				t.Fatalf("ToUseCaseInput() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
