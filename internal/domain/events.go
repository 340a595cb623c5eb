package domain

import "time"

// Event types
const (
	EventTypeWalletOperationApplied = "wallet.operation.applied"
	EventTypeTransferCreated        = "transfer.created"
	EventTypeAccountCreated         = "account.created"
	EventTypeAccountStatusChanged   = "account.status_changed"
)

// Aggregate types
const (
	AggregateTypeAccount  = "account"
	AggregateTypeTransfer = "transfer"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// WalletOperationAppliedEvent payload
type WalletOperationAppliedEvent struct {
	EntryID        int64  `json:"entry_id"`
	AccountID      string `json:"account_id"`
	ExternalTxnRef string `json:"external_txn_ref"`
	OpKind         string `json:"op_kind"`
	Amount         string `json:"amount"`
	BalanceAfter   string `json:"balance_after"`
	GameRef        string `json:"game_ref,omitempty"`
}

// TransferCreatedEvent payload
type TransferCreatedEvent struct {
	TransferID    string `json:"transfer_id"`
	FromAccountID string `json:"from_account_id"`
	ToAccountID   string `json:"to_account_id"`
	Amount        string `json:"amount"`
	Reason        string `json:"reason"`
	OperatorID    string `json:"operator_id"`
}

// AccountCreatedEvent payload
type AccountCreatedEvent struct {
	AccountID   string `json:"account_id"`
	ExternalRef string `json:"external_ref"`
	Type        string `json:"type"`
}

// AccountStatusChangedEvent payload
type AccountStatusChangedEvent struct {
	AccountID string `json:"account_id"`
	From      string `json:"from"`
	To        string `json:"to"`
}
