package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gowallet/internal/domain"
)

// AccountUseCase handles account business logic.
type AccountUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	auditRepo   AuditRepository
	outboxRepo  OutboxRepository
	cache       Cache
	idGen       IDGenerator
}

// NewAccountUseCase creates a new AccountUseCase. cache may be nil.
func NewAccountUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	auditRepo AuditRepository,
	outboxRepo OutboxRepository,
	cache Cache,
	idGen IDGenerator,
) *AccountUseCase {
	return &AccountUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		auditRepo:   auditRepo,
		outboxRepo:  outboxRepo,
		cache:       cache,
		idGen:       idGen,
	}
}

// CreateAccountInput represents input for creating an account.
type CreateAccountInput struct {
	ExternalRef          string
	Name                 string
	Type                 domain.AccountType
	AgentID              *string
	AllowNegativeBalance bool
	Operator             *domain.User
	RequestID            string
}

// CreateAccount creates a new account with a zero balance.
func (uc *AccountUseCase) CreateAccount(ctx context.Context, input CreateAccountInput) (*domain.Account, error) {
	if err := domain.ValidateExternalRef(input.ExternalRef); err != nil {
		return nil, err
	}

	if err := domain.ValidateAccountName(input.Name); err != nil {
		return nil, err
	}

	if input.Type == "" {
		input.Type = domain.AccountTypePlayer
	}

	if !input.Type.IsValid() {
		return nil, fmt.Errorf("%w: unknown account type %q", domain.ErrInvalidRequest, input.Type)
	}

	operator := operatorOrSystem(input.Operator)
	now := time.Now().UTC()

	account := &domain.Account{
		ID:                   uc.idGen.Generate(),
		ExternalRef:          input.ExternalRef,
		Name:                 input.Name,
		Type:                 input.Type,
		AgentID:              input.AgentID,
		Balance:              decimal.Zero,
		Status:               domain.AccountStatusActive,
		AllowNegativeBalance: input.AllowNegativeBalance,
		Version:              0,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := uc.accountRepo.CreateTx(ctx, tx, account); err != nil {
		return nil, err
	}

	err = uc.auditTx(ctx, tx, &domain.AuditLog{
		UserID:       operator.ID,
		Action:       domain.AuditActionAccountCreate,
		ResourceType: domain.AggregateTypeAccount,
		ResourceID:   account.ID,
		RequestID:    input.RequestID,
		AfterState:   domain.MarshalState(accountState(account)),
		Status:       domain.AuditStatusSuccess,
		CreatedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	err = uc.publishTx(ctx, tx, account.ID, domain.EventTypeAccountCreated, domain.AccountCreatedEvent{
		AccountID:   account.ID,
		ExternalRef: account.ExternalRef,
		Type:        string(account.Type),
	}, now)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return account, nil
}

// GetAccount retrieves an account by ID.
func (uc *AccountUseCase) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return uc.accountRepo.GetByID(ctx, id)
}

// GetAccountByExternalRef retrieves an account by its platform reference.
func (uc *AccountUseCase) GetAccountByExternalRef(ctx context.Context, externalRef string) (*domain.Account, error) {
	return resolveAccount(ctx, uc.cache, uc.accountRepo, externalRef)
}

// ListAccountsInput represents input for listing accounts.
type ListAccountsInput struct {
	Limit  int
	Offset int
}

// ListAccounts lists accounts with pagination.
func (uc *AccountUseCase) ListAccounts(ctx context.Context, input ListAccountsInput) ([]*domain.Account, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}
	if input.Limit > 100 {
		input.Limit = 100
	}
	return uc.accountRepo.List(ctx, input.Limit, input.Offset)
}

// SetStatusInput represents input for banning or reinstating an account.
type SetStatusInput struct {
	AccountID string
	Status    domain.AccountStatus
	Operator  *domain.User
	RequestID string
}

// SetStatus flips an account between active and banned. Banned accounts keep
// their balance and ledger but refuse new debits.
func (uc *AccountUseCase) SetStatus(ctx context.Context, input SetStatusInput) (*domain.Account, error) {
	if !input.Status.IsValid() {
		return nil, fmt.Errorf("%w: unknown account status %q", domain.ErrInvalidRequest, input.Status)
	}

	operator := operatorOrSystem(input.Operator)
	if !operator.Role.CanManageAccounts() {
		return nil, domain.ErrInsufficientRole
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	account, err := uc.accountRepo.GetByIDForUpdate(txCtx, tx, input.AccountID)
	if err != nil {
		return nil, err
	}

	if account.Status == input.Status {
		return account, nil
	}

	before := accountState(account)
	previous := account.Status
	now := time.Now().UTC()

	if err := uc.accountRepo.UpdateStatus(txCtx, tx, account.ID, input.Status, now); err != nil {
		return nil, err
	}

	account.Status = input.Status
	account.UpdatedAt = now

	err = uc.auditTx(txCtx, tx, &domain.AuditLog{
		UserID:       operator.ID,
		Action:       domain.AuditActionAccountStatus,
		ResourceType: domain.AggregateTypeAccount,
		ResourceID:   account.ID,
		RequestID:    input.RequestID,
		BeforeState:  domain.MarshalState(before),
		AfterState:   domain.MarshalState(accountState(account)),
		Status:       domain.AuditStatusSuccess,
		CreatedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	err = uc.publishTx(txCtx, tx, account.ID, domain.EventTypeAccountStatusChanged, domain.AccountStatusChangedEvent{
		AccountID: account.ID,
		From:      string(previous),
		To:        string(input.Status),
	}, now)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	return account, nil
}

// AuditTrail returns the audit history of an account.
func (uc *AccountUseCase) AuditTrail(ctx context.Context, accountID string) ([]*domain.AuditLog, error) {
	if uc.auditRepo == nil {
		return nil, nil
	}
	return uc.auditRepo.GetByResourceID(ctx, domain.AggregateTypeAccount, accountID)
}

func (uc *AccountUseCase) auditTx(ctx context.Context, tx Transaction, log *domain.AuditLog) error {
	if uc.auditRepo == nil {
		return nil
	}
	return uc.auditRepo.CreateTx(ctx, tx, log)
}

func (uc *AccountUseCase) publishTx(ctx context.Context, tx Transaction, accountID, eventType string, payload any, now time.Time) error {
	if uc.outboxRepo == nil {
		return nil
	}

	return uc.outboxRepo.Create(ctx, tx, &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   accountID,
		AggregateType: domain.AggregateTypeAccount,
		EventType:     eventType,
		Payload:       domain.MarshalState(payload),
		CreatedAt:     now,
	})
}

type accountSnapshot struct {
	ExternalRef string `json:"external_ref"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Status      string `json:"status"`
	Balance     string `json:"balance"`
}

func accountState(a *domain.Account) accountSnapshot {
	return accountSnapshot{
		ExternalRef: a.ExternalRef,
		Name:        a.Name,
		Type:        string(a.Type),
		Status:      string(a.Status),
		Balance:     a.Balance.String(),
	}
}

func operatorOrSystem(u *domain.User) *domain.User {
	if u == nil {
		return domain.SystemOperator
	}
	return u
}
