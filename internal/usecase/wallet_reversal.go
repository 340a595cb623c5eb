package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/iho/gowallet/internal/domain"
)

// Rollback reverses the live entry carrying op.ExternalTxnRef with a
// correlated inverse entry. A bet that already has a live settlement cannot
// be rolled back.
func (uc *WalletUseCase) Rollback(ctx context.Context, op Operation) (*domain.OperationResult, error) {
	return uc.reverse(ctx, op, domain.OpRollback, domain.OpKind.IsReversible)
}

// CancelBet is a rollback restricted to unsettled bets.
func (uc *WalletUseCase) CancelBet(ctx context.Context, op Operation) (*domain.OperationResult, error) {
	return uc.reverse(ctx, op, domain.OpCancel, func(k domain.OpKind) bool { return k == domain.OpBet })
}

func (uc *WalletUseCase) reverse(ctx context.Context, op Operation, kind domain.OpKind, match func(domain.OpKind) bool) (*domain.OperationResult, error) {
	if err := domain.ValidateExternalRef(op.ExternalTxnRef); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}

	return uc.run(ctx, op, kind, func(ctx context.Context, tx Transaction, account *domain.Account) (*domain.LedgerEntry, error) {
		target, err := uc.findReversalTarget(ctx, tx, account.ID, op, kind, match)
		if err != nil {
			return nil, err
		}

		return &domain.LedgerEntry{
			Amount:            target.Amount.Neg(),
			BetRef:            target.BetRef,
			GameRef:           target.GameRef,
			CorrelatedEntryID: &target.ID,
		}, nil
	})
}

func (uc *WalletUseCase) findReversalTarget(
	ctx context.Context,
	tx Transaction,
	accountID string,
	op Operation,
	kind domain.OpKind,
	match func(domain.OpKind) bool,
) (*domain.LedgerEntry, error) {
	byRef, err := uc.entryRepo.ListByExternalRefTx(ctx, tx, accountID, op.ExternalTxnRef)
	if err != nil {
		return nil, err
	}

	related, err := uc.withBetRefs(ctx, tx, accountID, byRef)
	if err != nil {
		return nil, err
	}

	candidates := carryingRef(domain.LiveEntries(related, match), op.ExternalTxnRef)

	// A cancel may name the wager rather than the bet transaction.
	if len(candidates) == 0 && kind == domain.OpCancel {
		byBet, err := uc.entryRepo.ListByBetRefTx(ctx, tx, accountID, op.ExternalTxnRef)
		if err != nil {
			return nil, err
		}
		candidates = domain.LiveEntries(byBet, match)
	}

	if len(candidates) == 0 {
		return nil, domain.ErrNothingToRollback
	}

	target := pickReversalTarget(candidates)

	if target.OpKind.IsDebit() {
		settled, err := uc.hasLiveSettlement(ctx, tx, accountID, target)
		if err != nil {
			return nil, err
		}
		if settled {
			return nil, domain.ErrAlreadySettled
		}
	}

	return target, nil
}

// withBetRefs extends entries with everything sharing their bet references,
// so reversals booked under another external reference are seen.
func (uc *WalletUseCase) withBetRefs(ctx context.Context, tx Transaction, accountID string, entries []*domain.LedgerEntry) ([]*domain.LedgerEntry, error) {
	seen := make(map[int64]bool, len(entries))
	merged := make([]*domain.LedgerEntry, 0, len(entries))
	for _, e := range entries {
		seen[e.ID] = true
		merged = append(merged, e)
	}

	visited := make(map[string]bool)
	for _, e := range entries {
		if e.BetRef == "" || visited[e.BetRef] {
			continue
		}
		visited[e.BetRef] = true

		more, err := uc.entryRepo.ListByBetRefTx(ctx, tx, accountID, e.BetRef)
		if err != nil {
			return nil, err
		}

		for _, m := range more {
			if !seen[m.ID] {
				seen[m.ID] = true
				merged = append(merged, m)
			}
		}
	}

	return merged, nil
}

func (uc *WalletUseCase) hasLiveSettlement(ctx context.Context, tx Transaction, accountID string, debit *domain.LedgerEntry) (bool, error) {
	settlement := settlementKind(debit.OpKind)

	entries, err := uc.entryRepo.ListByBetRefTx(ctx, tx, accountID, debit.BetRef)
	if err != nil {
		return false, err
	}

	live := domain.LiveEntries(entries, func(k domain.OpKind) bool { return k == settlement })

	return len(live) > 0, nil
}

func settlementKind(debit domain.OpKind) domain.OpKind {
	if debit == domain.OpBuyIn {
		return domain.OpBuyOut
	}
	return domain.OpWin
}

func carryingRef(entries []*domain.LedgerEntry, ref string) []*domain.LedgerEntry {
	var out []*domain.LedgerEntry
	for _, e := range entries {
		if e.ExternalTxnRef == ref {
			out = append(out, e)
		}
	}
	return out
}

// pickReversalTarget prefers the latest debit, then the latest entry.
func pickReversalTarget(candidates []*domain.LedgerEntry) *domain.LedgerEntry {
	sorted := make([]*domain.LedgerEntry, len(candidates))
	copy(sorted, candidates)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID > sorted[j].ID })

	for _, e := range sorted {
		if e.OpKind.IsDebit() {
			return e
		}
	}

	return sorted[0]
}
