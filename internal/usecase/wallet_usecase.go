package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/gowallet/internal/domain"
)

// Operation is the canonical form of one provider callback, independent of
// any provider wire format.
type Operation struct {
	Kind           domain.OpKind
	AccountRef     string
	ExternalTxnRef string
	BetRef         string
	GameRef        string
	Amount         decimal.Decimal
	Metadata       map[string]any
}

// WalletMetrics records engine outcomes.
type WalletMetrics interface {
	RecordWalletOperation(kind, outcome string, duration time.Duration)
	RecordDuplicate(kind string)
}

// WalletDeps collects the collaborators of WalletUseCase. Index, Cache,
// Retrier, Outbox and Metrics are optional. A zero TxTimeout means
// DefaultTransactionTimeout.
type WalletDeps struct {
	TxManager TransactionManager
	Accounts  AccountRepository
	Entries   EntryRepository
	Records   IdempotencyRepository
	Outbox    OutboxRepository
	Index     IdempotencyIndex
	Cache     Cache
	Retrier   Retrier
	IDGen     IDGenerator
	Metrics   WalletMetrics
	TxTimeout time.Duration
}

// WalletUseCase is the seamless wallet transaction engine. Every mutating
// operation locks the account, re-checks idempotency under the lock and
// writes the ledger entry, balance, idempotency record and outbox event in
// one transaction.
type WalletUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	entryRepo   EntryRepository
	recordRepo  IdempotencyRepository
	outboxRepo  OutboxRepository
	index       IdempotencyIndex
	cache       Cache
	retrier     Retrier
	idGen       IDGenerator
	metrics     WalletMetrics
	txTimeout   time.Duration
	now         func() time.Time
}

// NewWalletUseCase creates a new WalletUseCase.
func NewWalletUseCase(deps WalletDeps) *WalletUseCase {
	uc := &WalletUseCase{
		txManager:   deps.TxManager,
		accountRepo: deps.Accounts,
		entryRepo:   deps.Entries,
		recordRepo:  deps.Records,
		outboxRepo:  deps.Outbox,
		index:       deps.Index,
		cache:       deps.Cache,
		retrier:     deps.Retrier,
		idGen:       deps.IDGen,
		metrics:     deps.Metrics,
		txTimeout:   deps.TxTimeout,
		now:         func() time.Time { return time.Now().UTC() },
	}

	if uc.retrier == nil {
		uc.retrier = noRetry{}
	}
	if uc.txTimeout <= 0 {
		uc.txTimeout = DefaultTransactionTimeout
	}

	return uc
}

type noRetry struct{}

func (noRetry) Retry(_ context.Context, operation func() error) error {
	return operation()
}

// applyFunc builds the entry for an operation from the locked account. The
// engine fills in balances, version and timestamps.
type applyFunc func(ctx context.Context, tx Transaction, account *domain.Account) (*domain.LedgerEntry, error)

// GetBalance returns the current balance without taking a lock.
func (uc *WalletUseCase) GetBalance(ctx context.Context, accountRef string) (decimal.Decimal, error) {
	account, err := uc.LookupAccount(ctx, accountRef)
	if err != nil {
		return decimal.Zero, err
	}

	return account.Balance, nil
}

// LookupAccount resolves an account by its external reference.
func (uc *WalletUseCase) LookupAccount(ctx context.Context, accountRef string) (*domain.Account, error) {
	if accountRef == "" {
		return nil, domain.ErrAccountNotFound
	}

	return resolveAccount(ctx, uc.cache, uc.accountRepo, accountRef)
}

// Apply dispatches a canonical operation to the matching engine method.
func (uc *WalletUseCase) Apply(ctx context.Context, op Operation) (*domain.OperationResult, error) {
	switch op.Kind {
	case domain.OpBet:
		return uc.PlaceBet(ctx, op)
	case domain.OpWin:
		return uc.Settle(ctx, op)
	case domain.OpRollback:
		return uc.Rollback(ctx, op)
	case domain.OpCancel:
		return uc.CancelBet(ctx, op)
	case domain.OpBuyIn:
		return uc.BuyIn(ctx, op)
	case domain.OpBuyOut:
		return uc.BuyOut(ctx, op)
	case domain.OpBonus:
		return uc.Bonus(ctx, op)
	case domain.OpJackpot:
		return uc.Jackpot(ctx, op)
	default:
		return nil, fmt.Errorf("%w: unsupported operation kind %q", domain.ErrInvalidRequest, op.Kind)
	}
}

// PlaceBet debits a stake.
func (uc *WalletUseCase) PlaceBet(ctx context.Context, op Operation) (*domain.OperationResult, error) {
	return uc.debit(ctx, op, domain.OpBet)
}

// BuyIn debits a buy-in. It behaves like a bet.
func (uc *WalletUseCase) BuyIn(ctx context.Context, op Operation) (*domain.OperationResult, error) {
	return uc.debit(ctx, op, domain.OpBuyIn)
}

// BuyOut credits a buy-out.
func (uc *WalletUseCase) BuyOut(ctx context.Context, op Operation) (*domain.OperationResult, error) {
	return uc.credit(ctx, op, domain.OpBuyOut)
}

// Bonus credits a bonus payout.
func (uc *WalletUseCase) Bonus(ctx context.Context, op Operation) (*domain.OperationResult, error) {
	return uc.credit(ctx, op, domain.OpBonus)
}

// Jackpot credits a jackpot payout.
func (uc *WalletUseCase) Jackpot(ctx context.Context, op Operation) (*domain.OperationResult, error) {
	return uc.credit(ctx, op, domain.OpJackpot)
}

// Settle credits the result of a bet. A zero amount is a recorded loss.
// The bet must already be on the account's ledger.
func (uc *WalletUseCase) Settle(ctx context.Context, op Operation) (*domain.OperationResult, error) {
	if err := validateOperation(op, domain.ValidateSettleAmount); err != nil {
		return nil, err
	}

	betRef := op.BetRef
	if betRef == "" {
		betRef = op.ExternalTxnRef
	}

	return uc.run(ctx, op, domain.OpWin, func(ctx context.Context, tx Transaction, account *domain.Account) (*domain.LedgerEntry, error) {
		entries, err := uc.entryRepo.ListByBetRefTx(ctx, tx, account.ID, betRef)
		if err != nil {
			return nil, err
		}

		isBet := func(k domain.OpKind) bool { return k == domain.OpBet }
		if countKind(entries, isBet) == 0 {
			return nil, fmt.Errorf("%w: %s", domain.ErrBetNotFound, betRef)
		}
		if len(domain.LiveEntries(entries, isBet)) == 0 {
			return nil, domain.ErrAlreadySettled
		}

		return &domain.LedgerEntry{
			Amount:  op.Amount,
			BetRef:  betRef,
			GameRef: op.GameRef,
		}, nil
	})
}

func (uc *WalletUseCase) debit(ctx context.Context, op Operation, kind domain.OpKind) (*domain.OperationResult, error) {
	if err := validateOperation(op, domain.ValidateAmount); err != nil {
		return nil, err
	}

	return uc.run(ctx, op, kind, func(_ context.Context, _ Transaction, account *domain.Account) (*domain.LedgerEntry, error) {
		if !account.IsActive() {
			return nil, domain.ErrAccountBanned
		}

		return &domain.LedgerEntry{
			Amount:  op.Amount.Neg(),
			BetRef:  betRefOrRef(op),
			GameRef: op.GameRef,
		}, nil
	})
}

func (uc *WalletUseCase) credit(ctx context.Context, op Operation, kind domain.OpKind) (*domain.OperationResult, error) {
	if err := validateOperation(op, domain.ValidateAmount); err != nil {
		return nil, err
	}

	return uc.run(ctx, op, kind, func(context.Context, Transaction, *domain.Account) (*domain.LedgerEntry, error) {
		return &domain.LedgerEntry{
			Amount:  op.Amount,
			BetRef:  betRefOrRef(op),
			GameRef: op.GameRef,
		}, nil
	})
}

func (uc *WalletUseCase) run(ctx context.Context, op Operation, kind domain.OpKind, apply applyFunc) (*domain.OperationResult, error) {
	start := time.Now()
	log := zerolog.Ctx(ctx).With().
		Str("op_kind", string(kind)).
		Str("external_txn_ref", op.ExternalTxnRef).
		Str("account_ref", op.AccountRef).
		Logger()

	// 1. Fast path: reserve the key before touching any row
	owned := false
	if uc.index != nil {
		exists, prior, err := uc.index.CheckOrReserve(ctx, op.ExternalTxnRef, kind)
		switch {
		case err != nil:
			log.Warn().Err(err).Msg("idempotency index unavailable, falling back to durable check")
		case exists && prior != nil:
			if err := uc.checkOwner(ctx, op, prior); err != nil {
				uc.observe(kind, start, err)
				return nil, err
			}
			uc.observe(kind, start, domain.ErrDuplicateRequest)
			return prior, &domain.DuplicateRequestError{Prior: prior}
		case !exists:
			owned = true
		}
	}

	result, err := uc.execute(ctx, op, kind, apply)

	if owned {
		uc.finishReservation(ctx, op.ExternalTxnRef, kind, result, err)
	}

	uc.observe(kind, start, err)

	if err != nil {
		if _, dup := domain.AsDuplicate(err); !dup {
			log.Debug().Err(err).Msg("wallet operation rejected")
		}
		return result, err
	}

	log.Debug().
		Int64("entry_id", result.EntryID).
		Str("balance_after", result.BalanceAfter.String()).
		Msg("wallet operation applied")

	return result, nil
}

func (uc *WalletUseCase) execute(ctx context.Context, op Operation, kind domain.OpKind, apply applyFunc) (*domain.OperationResult, error) {
	accountID, err := uc.accountIDFor(ctx, op, kind)
	if err != nil {
		return nil, err
	}

	var result *domain.OperationResult
	err = uc.retrier.Retry(ctx, func() error {
		var applyErr error
		result, applyErr = uc.applyInTx(ctx, accountID, op, kind, apply)
		return applyErr
	})

	return result, err
}

func (uc *WalletUseCase) applyInTx(
	ctx context.Context,
	accountID string,
	op Operation,
	kind domain.OpKind,
	apply applyFunc,
) (*domain.OperationResult, error) {
	txCtx, cancel := context.WithTimeout(ctx, uc.txTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	// 1. Lock the account row
	account, err := uc.accountRepo.GetByIDForUpdate(txCtx, tx, accountID)
	if err != nil {
		return nil, err
	}

	// 2. Durable idempotency check under the lock
	record, err := uc.recordRepo.GetTx(txCtx, tx, op.ExternalTxnRef, kind)
	switch {
	case err == nil:
		if err := ownedBy(account.ID, op, record.Result); err != nil {
			return nil, err
		}
		return record.Result, &domain.DuplicateRequestError{Prior: record.Result}
	case !errors.Is(err, domain.ErrRecordNotFound):
		return nil, err
	}

	// 3. Build the entry
	entry, err := apply(txCtx, tx, account)
	if err != nil {
		return nil, err
	}

	if entry.Amount.IsNegative() {
		if err := account.ValidateDelta(entry.Amount); err != nil {
			return nil, err
		}
	}

	now := uc.now()
	entry.AccountID = account.ID
	entry.ExternalTxnRef = op.ExternalTxnRef
	entry.OpKind = kind
	entry.BalanceBefore = account.Balance
	entry.BalanceAfter = account.Balance.Add(entry.Amount)
	entry.AccountVersion = account.Version + 1
	entry.Metadata = op.Metadata
	entry.CreatedAt = now

	// 4. Append and move the balance
	entry.ID, err = uc.entryRepo.Append(txCtx, tx, entry)
	if err != nil {
		return nil, err
	}

	err = uc.accountRepo.UpdateBalance(txCtx, tx, account.ID, entry.BalanceAfter, account.Version, now)
	if err != nil {
		return nil, err
	}

	// 5. Record the outcome
	result := domain.ResultFromEntry(entry)
	err = uc.recordRepo.CreateTx(txCtx, tx, &domain.IdempotencyRecord{
		ExternalTxnRef: op.ExternalTxnRef,
		OpKind:         kind,
		Result:         result,
		CreatedAt:      now,
	})
	if err != nil {
		return nil, err
	}

	if err := uc.publish(txCtx, tx, entry); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	return result, nil
}

func (uc *WalletUseCase) publish(ctx context.Context, tx Transaction, entry *domain.LedgerEntry) error {
	if uc.outboxRepo == nil || uc.idGen == nil {
		return nil
	}

	payload := domain.MarshalState(domain.WalletOperationAppliedEvent{
		EntryID:        entry.ID,
		AccountID:      entry.AccountID,
		ExternalTxnRef: entry.ExternalTxnRef,
		OpKind:         string(entry.OpKind),
		Amount:         entry.Amount.String(),
		BalanceAfter:   entry.BalanceAfter.String(),
		GameRef:        entry.GameRef,
	})

	return uc.outboxRepo.Create(ctx, tx, &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   entry.AccountID,
		AggregateType: domain.AggregateTypeAccount,
		EventType:     domain.EventTypeWalletOperationApplied,
		Payload:       payload,
		CreatedAt:     entry.CreatedAt,
	})
}

func (uc *WalletUseCase) finishReservation(ctx context.Context, ref string, kind domain.OpKind, result *domain.OperationResult, err error) {
	log := zerolog.Ctx(ctx)
	ctx = context.WithoutCancel(ctx)

	prior, dup := domain.AsDuplicate(err)
	switch {
	case err == nil:
		if cerr := uc.index.Commit(ctx, ref, kind, result); cerr != nil {
			log.Warn().Err(cerr).Str("external_txn_ref", ref).Msg("failed to commit idempotency reservation")
		}
	case dup && prior != nil:
		if cerr := uc.index.Commit(ctx, ref, kind, prior); cerr != nil {
			log.Warn().Err(cerr).Str("external_txn_ref", ref).Msg("failed to commit idempotency reservation")
		}
	default:
		if rerr := uc.index.Release(ctx, ref, kind); rerr != nil {
			log.Warn().Err(rerr).Str("external_txn_ref", ref).Msg("failed to release idempotency reservation")
		}
	}
}

// checkOwner rejects a replay whose reference was first used by another
// account. Reversals without an account reference inherit the owner.
func (uc *WalletUseCase) checkOwner(ctx context.Context, op Operation, prior *domain.OperationResult) error {
	if op.AccountRef == "" || prior.AccountID == "" {
		return nil
	}

	account, err := resolveAccount(ctx, uc.cache, uc.accountRepo, op.AccountRef)
	if err != nil {
		return err
	}
	return ownedBy(account.ID, op, prior)
}

func ownedBy(accountID string, op Operation, prior *domain.OperationResult) error {
	if prior == nil || prior.AccountID == "" || prior.AccountID == accountID {
		return nil
	}
	return fmt.Errorf("%w: reference %s belongs to another account", domain.ErrInvalidRequest, op.ExternalTxnRef)
}

// accountIDFor resolves the account an operation applies to. Reversals may
// omit the account reference, in which case the account is found from the
// ledger.
func (uc *WalletUseCase) accountIDFor(ctx context.Context, op Operation, kind domain.OpKind) (string, error) {
	if op.AccountRef != "" {
		account, err := resolveAccount(ctx, uc.cache, uc.accountRepo, op.AccountRef)
		if err != nil {
			return "", err
		}
		return account.ID, nil
	}

	if !kind.IsReversal() {
		return "", domain.ErrAccountNotFound
	}

	entries, err := uc.entryRepo.ListByExternalRef(ctx, op.ExternalTxnRef)
	if err != nil {
		return "", err
	}

	for _, e := range entries {
		if e.OpKind.IsReversible() {
			return e.AccountID, nil
		}
	}

	return "", domain.ErrNothingToRollback
}

func (uc *WalletUseCase) observe(kind domain.OpKind, start time.Time, err error) {
	if uc.metrics == nil {
		return
	}

	if errors.Is(err, domain.ErrDuplicateRequest) {
		uc.metrics.RecordDuplicate(string(kind))
	}

	uc.metrics.RecordWalletOperation(string(kind), OutcomeLabel(err), time.Since(start))
}

// OutcomeLabel turns an engine error into a low-cardinality metric label.
func OutcomeLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrDuplicateRequest):
		return "duplicate"
	case errors.Is(err, domain.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, domain.ErrAccountNotFound):
		return "account_not_found"
	case errors.Is(err, domain.ErrAccountBanned):
		return "account_banned"
	case errors.Is(err, domain.ErrNothingToRollback):
		return "nothing_to_rollback"
	case errors.Is(err, domain.ErrAlreadySettled):
		return "already_settled"
	case errors.Is(err, domain.ErrBetNotFound):
		return "bet_not_found"
	case errors.Is(err, domain.ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, domain.ErrStoreUnavailable):
		return "store_unavailable"
	default:
		return "error"
	}
}

func validateOperation(op Operation, validAmount func(decimal.Decimal) error) error {
	if err := domain.ValidateExternalRef(op.ExternalTxnRef); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}

	if op.AccountRef == "" {
		return fmt.Errorf("%w: account reference is required", domain.ErrInvalidRequest)
	}

	if err := validAmount(op.Amount); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}

	if err := domain.ValidateMetadata(op.Metadata); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}

	return nil
}

func betRefOrRef(op Operation) string {
	if op.BetRef != "" {
		return op.BetRef
	}
	return op.ExternalTxnRef
}

func countKind(entries []*domain.LedgerEntry, match func(domain.OpKind) bool) int {
	n := 0
	for _, e := range entries {
		if match(e.OpKind) {
			n++
		}
	}
	return n
}

func resolveAccount(ctx context.Context, cache Cache, repo AccountRepository, externalRef string) (*domain.Account, error) {
	key := accountRefCachePrefix + externalRef

	if cache != nil {
		if id, err := cache.Get(ctx, key); err == nil && id != "" {
			account, err := repo.GetByID(ctx, id)
			if err == nil {
				return account, nil
			}
			_ = cache.Delete(ctx, key)
		}
	}

	account, err := repo.GetByExternalRef(ctx, externalRef)
	if err != nil {
		return nil, err
	}

	if cache != nil {
		if err := cache.Set(ctx, key, account.ID, AccountRefCacheTTL); err != nil {
			zerolog.Ctx(ctx).Debug().Err(err).Msg("failed to cache account reference")
		}
	}

	return account, nil
}
