package postgres_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/gowallet/internal/adapter/repository/postgres"
	"github.com/iho/gowallet/internal/domain"
	infrapg "github.com/iho/gowallet/internal/infrastructure/postgres"
	"github.com/iho/gowallet/internal/usecase"
)

// Set WALLET_TEST_DATABASE_URL to run these against a disposable database.
const testDatabaseEnv = "WALLET_TEST_DATABASE_URL"

type pgFixture struct {
	pool     *pgxpool.Pool
	accounts *postgres.AccountRepository
	entries  *postgres.EntryRepository
	ledger   *postgres.LedgerRepository
	wallet   *usecase.WalletUseCase
}

func newPGFixture(t *testing.T) *pgFixture {
	t.Helper()

	dbURL := os.Getenv(testDatabaseEnv)
	if dbURL == "" || testing.Short() {
		t.Skipf("%s not set, skipping integration test", testDatabaseEnv)
	}

	require.NoError(t, infrapg.RunMigrations(dbURL, zerolog.Nop()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := infrapg.NewPool(ctx, dbURL, 20, 2)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, `TRUNCATE TABLE audit_logs, outbox_events, seamless_events, idempotency_records, ledger_entries, transfers, accounts CASCADE`)
	require.NoError(t, err)

	f := &pgFixture{
		pool:     pool,
		accounts: postgres.NewAccountRepository(pool),
		entries:  postgres.NewEntryRepository(pool),
		ledger:   postgres.NewLedgerRepository(pool),
	}
	f.wallet = usecase.NewWalletUseCase(usecase.WalletDeps{
		TxManager: postgres.NewTxManager(pool),
		Accounts:  f.accounts,
		Entries:   f.entries,
		Records:   postgres.NewIdempotencyRepository(pool),
		Outbox:    postgres.NewOutboxRepository(pool),
		Retrier:   postgres.NewRetrier(postgres.WithMaxRetries(5)),
		IDGen:     postgres.NewULIDGenerator(),
	})
	return f
}

func (f *pgFixture) addPlayer(t *testing.T, ref string, funds int64) *domain.Account {
	t.Helper()
	ctx := context.Background()

	now := time.Now().UTC()
	account := &domain.Account{
		ID:          postgres.NewULIDGenerator().Generate(),
		ExternalRef: ref,
		Name:        ref,
		Type:        domain.AccountTypePlayer,
		Status:      domain.AccountStatusActive,
		Balance:     decimal.Zero,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, f.accounts.Create(ctx, account))

	if funds > 0 {
		_, err := f.wallet.Bonus(ctx, usecase.Operation{
			AccountRef:     ref,
			ExternalTxnRef: "seed-" + ref,
			Amount:         decimal.NewFromInt(funds),
		})
		require.NoError(t, err)
	}
	return account
}

func (f *pgFixture) assertReplay(t *testing.T, id string) decimal.Decimal {
	t.Helper()
	ctx := context.Background()

	acc, err := f.accounts.GetByID(ctx, id)
	require.NoError(t, err)
	sum, err := f.entries.SumByAccount(ctx, id)
	require.NoError(t, err)
	assert.True(t, sum.Equal(acc.Balance), "ledger sum %s != balance %s", sum, acc.Balance)
	return acc.Balance
}

func TestIntegration_ConcurrentBetsNeverOverdraw(t *testing.T) {
	f := newPGFixture(t)
	player := f.addPlayer(t, "player-1", 1000)

	const attempts = 150
	var (
		wg        sync.WaitGroup
		succeeded atomic.Int32
		rejected  atomic.Int32
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.wallet.PlaceBet(context.Background(), usecase.Operation{
				AccountRef:     "player-1",
				ExternalTxnRef: fmt.Sprintf("bet-%d", i),
				GameRef:        "G1",
				Amount:         decimal.NewFromInt(10),
			})
			switch {
			case err == nil:
				succeeded.Add(1)
			case errors.Is(err, domain.ErrInsufficientFunds):
				rejected.Add(1)
			default:
				t.Errorf("bet %d: unexpected error: %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(100), succeeded.Load())
	assert.Equal(t, int32(50), rejected.Load())

	balance := f.assertReplay(t, player.ID)
	assert.True(t, balance.IsZero(), "balance %s", balance)
}

func TestIntegration_ConcurrentDuplicatesApplyOnce(t *testing.T) {
	f := newPGFixture(t)
	player := f.addPlayer(t, "player-2", 100)

	const attempts = 20
	var (
		wg         sync.WaitGroup
		applied    atomic.Int32
		duplicates atomic.Int32
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.wallet.PlaceBet(context.Background(), usecase.Operation{
				AccountRef:     "player-2",
				ExternalTxnRef: "same-bet",
				GameRef:        "G1",
				Amount:         decimal.NewFromInt(30),
			})
			switch {
			case err == nil:
				applied.Add(1)
			case errors.Is(err, domain.ErrDuplicateRequest):
				duplicates.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), applied.Load())
	assert.Equal(t, int32(attempts-1), duplicates.Load())

	balance := f.assertReplay(t, player.ID)
	assert.True(t, balance.Equal(decimal.NewFromInt(70)), "balance %s", balance)
}

func TestIntegration_SettleAndRollback(t *testing.T) {
	f := newPGFixture(t)
	ctx := context.Background()
	player := f.addPlayer(t, "player-3", 100)

	op := usecase.Operation{AccountRef: "player-3", ExternalTxnRef: "round-1", GameRef: "G1", Amount: decimal.NewFromInt(40)}

	_, err := f.wallet.PlaceBet(ctx, op)
	require.NoError(t, err)

	res, err := f.wallet.Rollback(ctx, usecase.Operation{AccountRef: "player-3", ExternalTxnRef: "round-1"})
	require.NoError(t, err)
	assert.True(t, res.BalanceAfter.Equal(decimal.NewFromInt(100)))

	_, err = f.wallet.Rollback(ctx, usecase.Operation{AccountRef: "player-3", ExternalTxnRef: "round-1"})
	assert.ErrorIs(t, err, domain.ErrDuplicateRequest)

	f.assertReplay(t, player.ID)

	debits, credits, err := f.ledger.CheckConsistency(ctx)
	require.NoError(t, err)
	assert.False(t, debits.IsNegative())
	assert.False(t, credits.IsNegative())
}
