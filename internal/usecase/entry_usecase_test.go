package usecase_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iho/gowallet/internal/domain"
	"github.com/iho/gowallet/internal/usecase"
	"github.com/iho/gowallet/internal/usecase/mocks"
)

func TestEntryUseCase_GetEntriesByAccount(t *testing.T) {
	tests := []struct {
		name      string
		limit     int
		wantLimit int
	}{
		{"default limit", 0, 20},
		{"clamped limit", 500, 100},
		{"explicit limit", 5, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := mocks.NewMockEntryRepository(ctrl)

			want := []*domain.LedgerEntry{{ID: 1, AccountID: "acc-1"}}
			repo.EXPECT().ListByAccount(gomock.Any(), "acc-1", tt.wantLimit, 10).Return(want, nil)

			got, err := usecase.NewEntryUseCase(repo).GetEntriesByAccount(context.Background(), usecase.GetEntriesByAccountInput{
				AccountID: "acc-1",
				Limit:     tt.limit,
				Offset:    10,
			})
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestEntryUseCase_GetEntriesByExternalRef(t *testing.T) {
	f := newWalletFixture(t)
	ctx := context.Background()

	_, err := f.wallet.PlaceBet(ctx, op("T1", 30))
	require.NoError(t, err)
	_, err = f.wallet.Settle(ctx, op("T1", 45))
	require.NoError(t, err)

	entries, err := usecase.NewEntryUseCase(f.entries).GetEntriesByExternalRef(ctx, "T1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, domain.OpBet, entries[0].OpKind)
	assert.Equal(t, domain.OpWin, entries[1].OpKind)
}

func TestEntryUseCase_BalanceAsOf(t *testing.T) {
	f := newWalletFixture(t)
	ctx := context.Background()

	_, err := f.wallet.PlaceBet(ctx, op("T1", 30))
	require.NoError(t, err)

	balance, err := usecase.NewEntryUseCase(f.entries).BalanceAsOf(ctx, "acc-A")
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(70)))
}
