package dto

import (
	"time"

	"github.com/iho/gowallet/internal/domain"
	"github.com/iho/gowallet/internal/usecase"
)

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID                   string    `json:"id"`
	ExternalRef          string    `json:"external_ref"`
	Name                 string    `json:"name"`
	Type                 string    `json:"type"`
	AgentID              *string   `json:"agent_id,omitempty"`
	Balance              string    `json:"balance"`
	Status               string    `json:"status"`
	AllowNegativeBalance bool      `json:"allow_negative_balance"`
	Version              int64     `json:"version"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:                   a.ID,
		ExternalRef:          a.ExternalRef,
		Name:                 a.Name,
		Type:                 string(a.Type),
		AgentID:              a.AgentID,
		Balance:              a.Balance.String(),
		Status:               string(a.Status),
		AllowNegativeBalance: a.AllowNegativeBalance,
		Version:              a.Version,
		CreatedAt:            a.CreatedAt,
		UpdatedAt:            a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// ListAccountsResponse is a page of accounts.
type ListAccountsResponse struct {
	Accounts []*AccountResponse `json:"accounts"`
	Total    int64              `json:"total"`
}

// BalanceResponse is the current balance of an account.
type BalanceResponse struct {
	AccountID   string `json:"account_id"`
	ExternalRef string `json:"external_ref"`
	Balance     string `json:"balance"`
	Status      string `json:"status"`
}

// BalanceFromDomain converts an account to its balance view.
func BalanceFromDomain(a *domain.Account) *BalanceResponse {
	return &BalanceResponse{
		AccountID:   a.ID,
		ExternalRef: a.ExternalRef,
		Balance:     a.Balance.String(),
		Status:      string(a.Status),
	}
}

// TransferResponse represents a transfer in API responses.
type TransferResponse struct {
	ID            string    `json:"id"`
	FromAccountID string    `json:"from_account_id"`
	ToAccountID   string    `json:"to_account_id"`
	Amount        string    `json:"amount"`
	Reason        string    `json:"reason,omitempty"`
	OperatorID    string    `json:"operator_id"`
	CreatedAt     time.Time `json:"created_at"`
}

// TransferFromDomain converts domain transfer to response.
func TransferFromDomain(t *domain.Transfer) *TransferResponse {
	return &TransferResponse{
		ID:            t.ID,
		FromAccountID: t.FromAccountID,
		ToAccountID:   t.ToAccountID,
		Amount:        t.Amount.String(),
		Reason:        t.Reason,
		OperatorID:    t.OperatorID,
		CreatedAt:     t.CreatedAt,
	}
}

// TransfersFromDomain converts domain transfers to responses.
func TransfersFromDomain(transfers []*domain.Transfer) []*TransferResponse {
	result := make([]*TransferResponse, len(transfers))
	for i, t := range transfers {
		result[i] = TransferFromDomain(t)
	}
	return result
}

// TransferResultResponse is a created transfer with the balances it left.
type TransferResultResponse struct {
	Transfer    *TransferResponse `json:"transfer"`
	FromBalance string            `json:"from_balance"`
	ToBalance   string            `json:"to_balance"`
}

// TransferResultFromUseCase converts a transfer result to response.
func TransferResultFromUseCase(r *usecase.TransferResult) *TransferResultResponse {
	return &TransferResultResponse{
		Transfer:    TransferFromDomain(r.Transfer),
		FromBalance: r.FromBalance.String(),
		ToBalance:   r.ToBalance.String(),
	}
}

// EntryResponse represents a ledger entry in API responses.
type EntryResponse struct {
	ID                int64          `json:"id"`
	AccountID         string         `json:"account_id"`
	ExternalTxnRef    string         `json:"external_txn_ref"`
	OpKind            string         `json:"op_kind"`
	Amount            string         `json:"amount"`
	BalanceBefore     string         `json:"balance_before"`
	BalanceAfter      string         `json:"balance_after"`
	GameRef           string         `json:"game_ref,omitempty"`
	BetRef            string         `json:"bet_ref,omitempty"`
	TransferID        *string        `json:"transfer_id,omitempty"`
	CorrelatedEntryID *int64         `json:"correlated_entry_id,omitempty"`
	AccountVersion    int64          `json:"account_version"`
	Metadata          map[string]any `json:"metadata,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
}

// EntryFromDomain converts domain entry to response.
func EntryFromDomain(e *domain.LedgerEntry) *EntryResponse {
	return &EntryResponse{
		ID:                e.ID,
		AccountID:         e.AccountID,
		ExternalTxnRef:    e.ExternalTxnRef,
		OpKind:            string(e.OpKind),
		Amount:            e.Amount.String(),
		BalanceBefore:     e.BalanceBefore.String(),
		BalanceAfter:      e.BalanceAfter.String(),
		GameRef:           e.GameRef,
		BetRef:            e.BetRef,
		TransferID:        e.TransferID,
		CorrelatedEntryID: e.CorrelatedEntryID,
		AccountVersion:    e.AccountVersion,
		Metadata:          e.Metadata,
		CreatedAt:         e.CreatedAt,
	}
}

// EntriesFromDomain converts domain entries to responses.
func EntriesFromDomain(entries []*domain.LedgerEntry) []*EntryResponse {
	result := make([]*EntryResponse, len(entries))
	for i, e := range entries {
		result[i] = EntryFromDomain(e)
	}
	return result
}

// ReconciliationResponse compares a stored balance with its ledger replay.
type ReconciliationResponse struct {
	AccountID         string    `json:"account_id"`
	RecordedBalance   string    `json:"recorded_balance"`
	CalculatedBalance string    `json:"calculated_balance"`
	Difference        string    `json:"difference"`
	IsReconciled      bool      `json:"is_reconciled"`
	LastChecked       time.Time `json:"last_checked"`
}

// ReconciliationFromUseCase converts a reconciliation result to response.
func ReconciliationFromUseCase(r *usecase.ReconciliationResult) *ReconciliationResponse {
	return &ReconciliationResponse{
		AccountID:         r.AccountID,
		RecordedBalance:   r.RecordedBalance.String(),
		CalculatedBalance: r.CalculatedBalance.String(),
		Difference:        r.Difference.String(),
		IsReconciled:      r.IsReconciled,
		LastChecked:       r.LastChecked,
	}
}

// ReconciliationReportResponse summarizes a full reconciliation run.
type ReconciliationReportResponse struct {
	TotalAccounts      int                       `json:"total_accounts"`
	ReconciledAccounts int                       `json:"reconciled_accounts"`
	Discrepancies      []*ReconciliationResponse `json:"discrepancies"`
	LedgerConsistent   bool                      `json:"ledger_consistent"`
	CheckedAt          time.Time                 `json:"checked_at"`
}

// ReconciliationReportFromUseCase converts a report to response.
func ReconciliationReportFromUseCase(r *usecase.ReconciliationReport) *ReconciliationReportResponse {
	discrepancies := make([]*ReconciliationResponse, len(r.Discrepancies))
	for i, d := range r.Discrepancies {
		discrepancies[i] = ReconciliationFromUseCase(d)
	}
	return &ReconciliationReportResponse{
		TotalAccounts:      r.TotalAccounts,
		ReconciledAccounts: r.ReconciledAccounts,
		Discrepancies:      discrepancies,
		LedgerConsistent:   r.LedgerConsistent,
		CheckedAt:          r.CheckedAt,
	}
}

// AuditLogResponse represents an audit log in API responses.
type AuditLogResponse struct {
	ID           string         `json:"id"`
	UserID       string         `json:"user_id"`
	Action       string         `json:"action"`
	ResourceType string         `json:"resource_type"`
	ResourceID   string         `json:"resource_id"`
	RequestID    string         `json:"request_id,omitempty"`
	BeforeState  map[string]any `json:"before_state,omitempty"`
	AfterState   map[string]any `json:"after_state,omitempty"`
	Status       string         `json:"status"`
	ErrorMessage string         `json:"error_message,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

// AuditLogsFromDomain converts audit logs to responses.
func AuditLogsFromDomain(logs []*domain.AuditLog) []*AuditLogResponse {
	result := make([]*AuditLogResponse, len(logs))
	for i, l := range logs {
		result[i] = &AuditLogResponse{
			ID:           l.ID,
			UserID:       l.UserID,
			Action:       string(l.Action),
			ResourceType: l.ResourceType,
			ResourceID:   l.ResourceID,
			RequestID:    l.RequestID,
			BeforeState:  l.BeforeState,
			AfterState:   l.AfterState,
			Status:       string(l.Status),
			ErrorMessage: l.ErrorMessage,
			CreatedAt:    l.CreatedAt,
		}
	}
	return result
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
