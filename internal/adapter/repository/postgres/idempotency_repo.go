package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/iho/gowallet/internal/domain"
	"github.com/iho/gowallet/internal/usecase"
)

// IdempotencyRepository implements usecase.IdempotencyRepository on the
// idempotency_records table.
type IdempotencyRepository struct {
	db DB
}

// NewIdempotencyRepository creates a new IdempotencyRepository.
func NewIdempotencyRepository(db DB) *IdempotencyRepository {
	return &IdempotencyRepository{db: db}
}

// GetTx reads the record for (ref, kind) inside tx.
func (r *IdempotencyRepository) GetTx(ctx context.Context, tx usecase.Transaction, externalTxnRef string, kind domain.OpKind) (*domain.IdempotencyRecord, error) {
	pgxTx, err := pgxTxFrom(tx)
	if err != nil {
		return nil, err
	}

	var (
		result    []byte
		createdAt time.Time
	)

	err = pgxTx.QueryRow(ctx, `
		SELECT result, created_at FROM idempotency_records
		WHERE external_txn_ref = $1 AND op_kind = $2
	`, externalTxnRef, string(kind)).Scan(&result, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, err
	}

	var snapshot domain.OperationResult
	if err := json.Unmarshal(result, &snapshot); err != nil {
		return nil, err
	}

	return &domain.IdempotencyRecord{
		ExternalTxnRef: externalTxnRef,
		OpKind:         kind,
		Result:         &snapshot,
		CreatedAt:      createdAt,
	}, nil
}

// CreateTx inserts a record inside tx.
func (r *IdempotencyRepository) CreateTx(ctx context.Context, tx usecase.Transaction, record *domain.IdempotencyRecord) error {
	pgxTx, err := pgxTxFrom(tx)
	if err != nil {
		return err
	}

	result, err := json.Marshal(record.Result)
	if err != nil {
		return err
	}

	_, err = pgxTx.Exec(ctx, `
		INSERT INTO idempotency_records (external_txn_ref, op_kind, result, created_at)
		VALUES ($1, $2, $3, $4)
	`, record.ExternalTxnRef, string(record.OpKind), result, record.CreatedAt)

	return err
}
