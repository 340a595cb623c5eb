package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OperationResult is the outcome of one applied wallet operation. It is the
// snapshot replayed to duplicate callbacks.
type OperationResult struct {
	EntryID        int64           `json:"entry_id"`
	AccountID      string          `json:"account_id"`
	ExternalTxnRef string          `json:"external_txn_ref"`
	OpKind         OpKind          `json:"op_kind"`
	Amount         decimal.Decimal `json:"amount"`
	BalanceBefore  decimal.Decimal `json:"balance_before"`
	BalanceAfter   decimal.Decimal `json:"balance_after"`
	CreatedAt      time.Time       `json:"created_at"`
}

// ResultFromEntry builds the snapshot for an entry.
func ResultFromEntry(e *LedgerEntry) *OperationResult {
	return &OperationResult{
		EntryID:        e.ID,
		AccountID:      e.AccountID,
		ExternalTxnRef: e.ExternalTxnRef,
		OpKind:         e.OpKind,
		Amount:         e.Amount,
		BalanceBefore:  e.BalanceBefore,
		BalanceAfter:   e.BalanceAfter,
		CreatedAt:      e.CreatedAt,
	}
}

// IdempotencyRecord binds (ExternalTxnRef, OpKind) to the result applied for it.
type IdempotencyRecord struct {
	ExternalTxnRef string
	OpKind         OpKind
	Result         *OperationResult
	CreatedAt      time.Time
}
