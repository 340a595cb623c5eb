package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/gowallet/internal/domain"
)

// TransferUseCase handles credit transfers between accounts of the agent hierarchy.
type TransferUseCase struct {
	txManager    TransactionManager
	accountRepo  AccountRepository
	transferRepo TransferRepository
	entryRepo    EntryRepository
	auditRepo    AuditRepository
	outboxRepo   OutboxRepository
	retrier      Retrier
	idGen        IDGenerator
}

// NewTransferUseCase creates a new TransferUseCase.
func NewTransferUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	transferRepo TransferRepository,
	entryRepo EntryRepository,
	auditRepo AuditRepository,
	outboxRepo OutboxRepository,
	retrier Retrier,
	idGen IDGenerator,
) *TransferUseCase {
	if retrier == nil {
		retrier = noRetry{}
	}

	return &TransferUseCase{
		txManager:    txManager,
		accountRepo:  accountRepo,
		transferRepo: transferRepo,
		entryRepo:    entryRepo,
		auditRepo:    auditRepo,
		outboxRepo:   outboxRepo,
		retrier:      retrier,
		idGen:        idGen,
	}
}

// CreateTransferInput represents input for creating a transfer.
type CreateTransferInput struct {
	FromAccountID string
	ToAccountID   string
	Amount        decimal.Decimal
	Reason        string
	Operator      *domain.User
	RequestID     string
}

// TransferResult is a committed transfer with both resulting balances.
type TransferResult struct {
	Transfer    *domain.Transfer
	FromBalance decimal.Decimal
	ToBalance   decimal.Decimal
}

// CreateTransfer moves credit from one account to another. Both ledger entries
// commit together or not at all.
func (uc *TransferUseCase) CreateTransfer(ctx context.Context, input CreateTransferInput) (*TransferResult, error) {
	// 0. Validate inputs before starting transaction
	if input.FromAccountID == input.ToAccountID {
		return nil, domain.ErrSameAccount
	}

	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	operator := operatorOrSystem(input.Operator)
	if !operator.Role.CanTransfer() {
		return nil, domain.ErrInsufficientRole
	}

	var result *TransferResult
	err := uc.retrier.Retry(ctx, func() error {
		var err error
		result, err = uc.transferInTx(ctx, input, operator)
		return err
	})
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().
		Str("transfer_id", result.Transfer.ID).
		Str("from_account_id", input.FromAccountID).
		Str("to_account_id", input.ToAccountID).
		Str("amount", input.Amount.String()).
		Str("operator_id", operator.ID).
		Msg("transfer committed")

	return result, nil
}

func (uc *TransferUseCase) transferInTx(ctx context.Context, input CreateTransferInput, operator *domain.User) (*TransferResult, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	// 1. Sort account IDs (DEADLOCK PREVENTION)
	accountIDs := []string{input.FromAccountID, input.ToAccountID}
	sort.Strings(accountIDs)

	// 2. Begin transaction
	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	// 3. Lock accounts in sorted order
	accounts, err := uc.accountRepo.GetByIDsForUpdate(txCtx, tx, accountIDs)
	if err != nil {
		return nil, err
	}

	if len(accounts) != len(accountIDs) {
		return nil, domain.ErrAccountNotFound
	}

	accountMap := buildAccountMap(accounts)
	from := accountMap[input.FromAccountID]
	to := accountMap[input.ToAccountID]

	if from == nil || to == nil {
		return nil, domain.ErrAccountNotFound
	}

	if !from.IsActive() || !to.IsActive() {
		return nil, domain.ErrAccountBanned
	}

	if err := from.ValidateDebit(input.Amount); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	// 4. Create transfer
	transfer := &domain.Transfer{
		ID:            uc.idGen.Generate(),
		FromAccountID: from.ID,
		ToAccountID:   to.ID,
		Amount:        input.Amount,
		Reason:        input.Reason,
		OperatorID:    operator.ID,
		CreatedAt:     now,
	}

	if err := transfer.Validate(); err != nil {
		return nil, err
	}

	if err := uc.transferRepo.Create(txCtx, tx, transfer); err != nil {
		return nil, err
	}

	// 5. Debit side, then the correlated credit side
	debitEntry, err := uc.post(txCtx, tx, from, transfer, input.Amount.Neg(), "debit", nil, now)
	if err != nil {
		return nil, err
	}

	if _, err := uc.post(txCtx, tx, to, transfer, input.Amount, "credit", &debitEntry.ID, now); err != nil {
		return nil, err
	}

	// 6. Audit and outbox
	if err := uc.audit(txCtx, tx, input, operator, transfer, now); err != nil {
		return nil, err
	}

	if err := uc.publish(txCtx, tx, transfer); err != nil {
		return nil, err
	}

	// 7. Commit transaction
	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	return &TransferResult{
		Transfer:    transfer,
		FromBalance: from.Balance,
		ToBalance:   to.Balance,
	}, nil
}

func (uc *TransferUseCase) post(
	ctx context.Context,
	tx Transaction,
	account *domain.Account,
	transfer *domain.Transfer,
	amount decimal.Decimal,
	side string,
	correlated *int64,
	now time.Time,
) (*domain.LedgerEntry, error) {
	transferID := transfer.ID
	ref := fmt.Sprintf("%s:%s", transfer.ID, side)

	entry := &domain.LedgerEntry{
		AccountID:         account.ID,
		ExternalTxnRef:    ref,
		OpKind:            domain.OpTransfer,
		Amount:            amount,
		BalanceBefore:     account.Balance,
		BalanceAfter:      account.Balance.Add(amount),
		BetRef:            ref,
		TransferID:        &transferID,
		CorrelatedEntryID: correlated,
		AccountVersion:    account.Version + 1,
		CreatedAt:         now,
	}

	id, err := uc.entryRepo.Append(ctx, tx, entry)
	if err != nil {
		return nil, err
	}
	entry.ID = id

	err = uc.accountRepo.UpdateBalance(ctx, tx, account.ID, entry.BalanceAfter, account.Version, now)
	if err != nil {
		return nil, err
	}

	account.Balance = entry.BalanceAfter
	account.Version++

	return entry, nil
}

func (uc *TransferUseCase) audit(
	ctx context.Context,
	tx Transaction,
	input CreateTransferInput,
	operator *domain.User,
	transfer *domain.Transfer,
	now time.Time,
) error {
	if uc.auditRepo == nil {
		return nil
	}

	return uc.auditRepo.CreateTx(ctx, tx, &domain.AuditLog{
		UserID:       operator.ID,
		Action:       domain.AuditActionTransfer,
		ResourceType: domain.AggregateTypeTransfer,
		ResourceID:   transfer.ID,
		RequestID:    input.RequestID,
		AfterState: domain.JSON{
			"from_account_id": transfer.FromAccountID,
			"to_account_id":   transfer.ToAccountID,
			"amount":          transfer.Amount.String(),
			"reason":          transfer.Reason,
		},
		Status:    domain.AuditStatusSuccess,
		CreatedAt: now,
	})
}

func (uc *TransferUseCase) publish(ctx context.Context, tx Transaction, transfer *domain.Transfer) error {
	if uc.outboxRepo == nil {
		return nil
	}

	return uc.outboxRepo.Create(ctx, tx, &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   transfer.ID,
		AggregateType: domain.AggregateTypeTransfer,
		EventType:     domain.EventTypeTransferCreated,
		Payload: domain.MarshalState(domain.TransferCreatedEvent{
			TransferID:    transfer.ID,
			FromAccountID: transfer.FromAccountID,
			ToAccountID:   transfer.ToAccountID,
			Amount:        transfer.Amount.String(),
			Reason:        transfer.Reason,
			OperatorID:    transfer.OperatorID,
		}),
		CreatedAt: transfer.CreatedAt,
	})
}

// GetTransfer retrieves a transfer by ID.
func (uc *TransferUseCase) GetTransfer(ctx context.Context, id string) (*domain.Transfer, error) {
	return uc.transferRepo.GetByID(ctx, id)
}

// ListTransfersByAccountInput represents input for listing transfers.
type ListTransfersByAccountInput struct {
	AccountID string
	Limit     int
	Offset    int
}

// ListTransfersByAccount lists transfers for an account.
func (uc *TransferUseCase) ListTransfersByAccount(ctx context.Context, input ListTransfersByAccountInput) ([]*domain.Transfer, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}

	if input.Limit > 100 {
		input.Limit = 100
	}

	return uc.transferRepo.ListByAccount(ctx, input.AccountID, input.Limit, input.Offset)
}

func buildAccountMap(accounts []*domain.Account) map[string]*domain.Account {
	m := make(map[string]*domain.Account)
	for _, a := range accounts {
		m[a.ID] = a
	}

	return m
}
