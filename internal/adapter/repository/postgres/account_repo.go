package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/gowallet/internal/domain"
	"github.com/iho/gowallet/internal/infrastructure/postgres/generated"
	"github.com/iho/gowallet/internal/usecase"
)

const accountsExternalRefKey = "accounts_external_ref_key"

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	db      DB
	queries *generated.Queries
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(db DB) *AccountRepository {
	return &AccountRepository{
		db:      db,
		queries: generated.New(db),
	}
}

// Create inserts an account outside of any transaction.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	return createAccount(ctx, r.queries, account)
}

// CreateTx inserts an account inside tx.
func (r *AccountRepository) CreateTx(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	queries, err := queriesFor(tx)
	if err != nil {
		return err
	}

	return createAccount(ctx, queries, account)
}

func createAccount(ctx context.Context, queries *generated.Queries, account *domain.Account) error {
	_, err := queries.CreateAccount(ctx, generated.CreateAccountParams{
		ID:                   account.ID,
		ExternalRef:          account.ExternalRef,
		Name:                 account.Name,
		AccountType:          string(account.Type),
		AgentID:              textOrNull(account.AgentID),
		Balance:              decimalToNumeric(account.Balance),
		Status:               string(account.Status),
		AllowNegativeBalance: account.AllowNegativeBalance,
		Version:              account.Version,
		CreatedAt:            timeToPgTimestamptz(account.CreatedAt),
		UpdatedAt:            timeToPgTimestamptz(account.UpdatedAt),
	})
	if isUniqueViolation(err, accountsExternalRefKey) {
		return domain.ErrAccountExists
	}

	return err
}

// GetByID retrieves an account by ID.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	row, err := r.queries.GetAccountByID(ctx, id)
	if err != nil {
		return nil, accountErr(err)
	}

	return rowToAccount(row), nil
}

// GetByExternalRef retrieves an account by its platform reference.
func (r *AccountRepository) GetByExternalRef(ctx context.Context, externalRef string) (*domain.Account, error) {
	row, err := r.queries.GetAccountByExternalRef(ctx, externalRef)
	if err != nil {
		return nil, accountErr(err)
	}

	return rowToAccount(row), nil
}

// GetByIDForUpdate retrieves an account by ID with a FOR UPDATE lock.
func (r *AccountRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error) {
	queries, err := queriesFor(tx)
	if err != nil {
		return nil, err
	}

	row, err := queries.GetAccountByIDForUpdate(ctx, id)
	if err != nil {
		return nil, accountErr(err)
	}

	return rowToAccount(row), nil
}

// GetByIDsForUpdate locks several accounts in id order. Missing accounts are
// left out of the result.
func (r *AccountRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Account, error) {
	queries, err := queriesFor(tx)
	if err != nil {
		return nil, err
	}

	rows, err := queries.GetAccountsByIDsForUpdate(ctx, ids)
	if err != nil {
		return nil, err
	}

	accounts := make([]*domain.Account, 0, len(rows))
	for _, row := range rows {
		accounts = append(accounts, rowToAccount(row))
	}

	return accounts, nil
}

// UpdateBalance writes the balance if the row still carries expectedVersion.
func (r *AccountRepository) UpdateBalance(
	ctx context.Context,
	tx usecase.Transaction,
	id string,
	balance decimal.Decimal,
	expectedVersion int64,
	updatedAt time.Time,
) error {
	queries, err := queriesFor(tx)
	if err != nil {
		return err
	}

	n, err := queries.UpdateAccountBalance(ctx, generated.UpdateAccountBalanceParams{
		ID:        id,
		Balance:   decimalToNumeric(balance),
		UpdatedAt: timeToPgTimestamptz(updatedAt),
		Version:   expectedVersion,
	})
	if err != nil {
		return err
	}

	if n == 0 {
		return domain.ErrVersionConflict
	}

	return nil
}

// UpdateStatus changes the lifecycle status of an account.
func (r *AccountRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.AccountStatus, updatedAt time.Time) error {
	queries, err := queriesFor(tx)
	if err != nil {
		return err
	}

	n, err := queries.UpdateAccountStatus(ctx, generated.UpdateAccountStatusParams{
		ID:        id,
		Status:    string(status),
		UpdatedAt: timeToPgTimestamptz(updatedAt),
	})
	if err != nil {
		return err
	}

	if n == 0 {
		return domain.ErrAccountNotFound
	}

	return nil
}

// List lists accounts with pagination.
func (r *AccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	rows, err := r.queries.ListAccounts(ctx, generated.ListAccountsParams{
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		return nil, err
	}

	accounts := make([]*domain.Account, 0, len(rows))
	for _, row := range rows {
		accounts = append(accounts, rowToAccount(row))
	}

	return accounts, nil
}

func accountErr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrAccountNotFound
	}
	return err
}

func rowToAccount(row generated.Account) *domain.Account {
	return &domain.Account{
		ID:                   row.ID,
		ExternalRef:          row.ExternalRef,
		Name:                 row.Name,
		Type:                 domain.AccountType(row.AccountType),
		AgentID:              textPtr(row.AgentID),
		Balance:              numericToDecimal(row.Balance),
		Status:               domain.AccountStatus(row.Status),
		AllowNegativeBalance: row.AllowNegativeBalance,
		Version:              row.Version,
		CreatedAt:            row.CreatedAt.Time,
		UpdatedAt:            row.UpdatedAt.Time,
	}
}
