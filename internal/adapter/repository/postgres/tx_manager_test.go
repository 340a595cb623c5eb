package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/gowallet/internal/domain"
)

// committedTx behaves like a pgx.Tx whose Commit already ran.
type committedTx struct {
	pgx.Tx
}

func (committedTx) Rollback(context.Context) error { return pgx.ErrTxClosed }

func TestTxManager_CommitsBalanceUpdate(t *testing.T) {
	mock := newMockPool(t)
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE accounts").
		WithArgs("acc-1", pgxmock.AnyArg(), pgxmock.AnyArg(), int64(1)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	ctx := context.Background()
	tx, err := NewTxManager(mock).Begin(ctx)
	require.NoError(t, err)

	err = NewAccountRepository(mock).UpdateBalance(ctx, tx, "acc-1", decimal.NewFromInt(250), 1, time.Now())
	require.NoError(t, err)
	require.NoError(t, tx.Commit(ctx))
	assertExpectations(t, mock)
}

func TestTxManager_BeginError(t *testing.T) {
	mock := newMockPool(t)
	beginErr := errors.New("connection refused")
	mock.ExpectBegin().WillReturnError(beginErr)

	tx, err := NewTxManager(mock).Begin(context.Background())
	assert.ErrorIs(t, err, beginErr)
	assert.Nil(t, tx)
}

func TestTxManager_RollbackOnVersionConflict(t *testing.T) {
	mock := newMockPool(t)
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE accounts").
		WithArgs("acc-1", pgxmock.AnyArg(), pgxmock.AnyArg(), int64(4)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectRollback()

	ctx := context.Background()
	tx, err := NewTxManager(mock).Begin(ctx)
	require.NoError(t, err)

	err = NewAccountRepository(mock).UpdateBalance(ctx, tx, "acc-1", decimal.NewFromInt(10), 4, time.Now())
	require.ErrorIs(t, err, domain.ErrVersionConflict)
	require.NoError(t, tx.Rollback(ctx))
	assertExpectations(t, mock)
}

func TestTx_RollbackAfterCommitIsNoop(t *testing.T) {
	tx := &Tx{tx: committedTx{}}
	assert.NoError(t, tx.Rollback(context.Background()))
}

func TestQueriesFor_RejectsForeignTransaction(t *testing.T) {
	_, err := queriesFor(foreignTx{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected transaction type")
}

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func assertExpectations(t *testing.T, pool pgxmock.PgxPoolIface) {
	t.Helper()
	assert.NoError(t, pool.ExpectationsWereMet(), "expectations were not met")
}
