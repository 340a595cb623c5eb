package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OpKind names the kind of balance-affecting event a ledger entry records.
type OpKind string

const (
	OpBet      OpKind = "bet"
	OpWin      OpKind = "win"
	OpRollback OpKind = "rollback"
	OpCancel   OpKind = "cancel"
	OpBuyIn    OpKind = "buyin"
	OpBuyOut   OpKind = "buyout"
	OpBonus    OpKind = "bonus"
	OpJackpot  OpKind = "jackpot"
	OpTransfer OpKind = "transfer"
)

// IsValid reports whether k is a known kind.
func (k OpKind) IsValid() bool {
	switch k {
	case OpBet, OpWin, OpRollback, OpCancel, OpBuyIn, OpBuyOut, OpBonus, OpJackpot, OpTransfer:
		return true
	}
	return false
}

// IsDebit reports whether the kind takes money from the player.
func (k OpKind) IsDebit() bool {
	return k == OpBet || k == OpBuyIn
}

// IsReversal reports whether the kind undoes an earlier entry.
func (k OpKind) IsReversal() bool {
	return k == OpRollback || k == OpCancel
}

// IsReversible reports whether entries of this kind can be rolled back.
func (k OpKind) IsReversible() bool {
	switch k {
	case OpBet, OpWin, OpBuyIn, OpBuyOut, OpBonus, OpJackpot:
		return true
	}
	return false
}

// LedgerEntry is one immutable balance movement on an account.
// Amount is signed: credits are positive, debits negative.
type LedgerEntry struct {
	ID                int64
	AccountID         string
	ExternalTxnRef    string
	OpKind            OpKind
	Amount            decimal.Decimal
	BalanceBefore     decimal.Decimal
	BalanceAfter      decimal.Decimal
	GameRef           string
	BetRef            string
	TransferID        *string
	CorrelatedEntryID *int64
	AccountVersion    int64
	Metadata          map[string]any
	CreatedAt         time.Time
}

// LiveEntries returns the entries of the given kinds that no reversal in
// entries points at.
func LiveEntries(entries []*LedgerEntry, match func(OpKind) bool) []*LedgerEntry {
	reversed := make(map[int64]bool)
	for _, e := range entries {
		if e.OpKind.IsReversal() && e.CorrelatedEntryID != nil {
			reversed[*e.CorrelatedEntryID] = true
		}
	}

	var live []*LedgerEntry
	for _, e := range entries {
		if match(e.OpKind) && !reversed[e.ID] {
			live = append(live, e)
		}
	}
	return live
}

// SumAmounts adds up entry amounts.
func SumAmounts(entries []*LedgerEntry) decimal.Decimal {
	sum := decimal.Zero
	for _, e := range entries {
		sum = sum.Add(e.Amount)
	}
	return sum
}
