package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/iho/gowallet/internal/domain"
	"github.com/iho/gowallet/internal/usecase"
)

const transferColumns = `id, from_account_id, to_account_id, amount::text, reason, operator_id, created_at`

// TransferRepository implements usecase.TransferRepository.
type TransferRepository struct {
	db DB
}

// NewTransferRepository creates a new TransferRepository.
func NewTransferRepository(db DB) *TransferRepository {
	return &TransferRepository{db: db}
}

// Create inserts a transfer inside tx.
func (r *TransferRepository) Create(ctx context.Context, tx usecase.Transaction, transfer *domain.Transfer) error {
	pgxTx, err := pgxTxFrom(tx)
	if err != nil {
		return err
	}

	_, err = pgxTx.Exec(ctx, `
		INSERT INTO transfers (id, from_account_id, to_account_id, amount, reason, operator_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		transfer.ID,
		transfer.FromAccountID,
		transfer.ToAccountID,
		decimalToNumeric(transfer.Amount),
		transfer.Reason,
		transfer.OperatorID,
		transfer.CreatedAt,
	)

	return err
}

// GetByID retrieves a transfer by ID.
func (r *TransferRepository) GetByID(ctx context.Context, id string) (*domain.Transfer, error) {
	row := r.db.QueryRow(ctx, `SELECT `+transferColumns+` FROM transfers WHERE id = $1`, id)

	transfer, err := scanTransfer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransferNotFound
		}
		return nil, err
	}

	return transfer, nil
}

// ListByAccount lists transfers touching an account, newest first.
func (r *TransferRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Transfer, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+transferColumns+` FROM transfers
		WHERE from_account_id = $1 OR to_account_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, accountID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transfers := make([]*domain.Transfer, 0)
	for rows.Next() {
		transfer, err := scanTransfer(rows)
		if err != nil {
			return nil, err
		}
		transfers = append(transfers, transfer)
	}

	return transfers, rows.Err()
}

func scanTransfer(row pgx.Row) (*domain.Transfer, error) {
	var (
		t      domain.Transfer
		amount string
	)

	if err := row.Scan(&t.ID, &t.FromAccountID, &t.ToAccountID, &amount, &t.Reason, &t.OperatorID, &t.CreatedAt); err != nil {
		return nil, err
	}

	var err error
	t.Amount, err = parseDecimal(amount)
	if err != nil {
		return nil, err
	}

	return &t, nil
}
