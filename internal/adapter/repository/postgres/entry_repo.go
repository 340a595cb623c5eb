package postgres

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/iho/gowallet/internal/domain"
	"github.com/iho/gowallet/internal/infrastructure/postgres/generated"
	"github.com/iho/gowallet/internal/usecase"
)

// EntryRepository implements usecase.EntryRepository on the append-only
// ledger_entries table.
type EntryRepository struct {
	db      DB
	queries *generated.Queries
}

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(db DB) *EntryRepository {
	return &EntryRepository{
		db:      db,
		queries: generated.New(db),
	}
}

// Append inserts an entry and returns the id assigned by the database.
func (r *EntryRepository) Append(ctx context.Context, tx usecase.Transaction, entry *domain.LedgerEntry) (int64, error) {
	queries, err := queriesFor(tx)
	if err != nil {
		return 0, err
	}

	var metadata []byte
	if entry.Metadata != nil {
		metadata, err = json.Marshal(entry.Metadata)
		if err != nil {
			return 0, err
		}
	}

	var correlated pgtype.Int8
	if entry.CorrelatedEntryID != nil {
		correlated = pgtype.Int8{Int64: *entry.CorrelatedEntryID, Valid: true}
	}

	return queries.AppendLedgerEntry(ctx, generated.AppendLedgerEntryParams{
		AccountID:         entry.AccountID,
		ExternalTxnRef:    entry.ExternalTxnRef,
		OpKind:            string(entry.OpKind),
		Amount:            decimalToNumeric(entry.Amount),
		BalanceBefore:     decimalToNumeric(entry.BalanceBefore),
		BalanceAfter:      decimalToNumeric(entry.BalanceAfter),
		GameRef:           entry.GameRef,
		BetRef:            entry.BetRef,
		TransferID:        textOrNull(entry.TransferID),
		CorrelatedEntryID: correlated,
		AccountVersion:    entry.AccountVersion,
		Metadata:          metadata,
		CreatedAt:         timeToPgTimestamptz(entry.CreatedAt),
	})
}

// ListByExternalRef lists entries carrying a reference on any account.
func (r *EntryRepository) ListByExternalRef(ctx context.Context, externalTxnRef string) ([]*domain.LedgerEntry, error) {
	rows, err := r.queries.ListEntriesByExternalRef(ctx, externalTxnRef)
	if err != nil {
		return nil, err
	}

	return rowsToEntries(rows), nil
}

// ListByExternalRefTx lists an account's entries carrying a reference.
func (r *EntryRepository) ListByExternalRefTx(ctx context.Context, tx usecase.Transaction, accountID, externalTxnRef string) ([]*domain.LedgerEntry, error) {
	queries, err := queriesFor(tx)
	if err != nil {
		return nil, err
	}

	rows, err := queries.ListEntriesByAccountAndExternalRef(ctx, generated.ListEntriesByAccountAndExternalRefParams{
		AccountID:      accountID,
		ExternalTxnRef: externalTxnRef,
	})
	if err != nil {
		return nil, err
	}

	return rowsToEntries(rows), nil
}

// ListByBetRefTx lists an account's entries sharing a bet reference.
func (r *EntryRepository) ListByBetRefTx(ctx context.Context, tx usecase.Transaction, accountID, betRef string) ([]*domain.LedgerEntry, error) {
	queries, err := queriesFor(tx)
	if err != nil {
		return nil, err
	}

	rows, err := queries.ListEntriesByAccountAndBetRef(ctx, generated.ListEntriesByAccountAndBetRefParams{
		AccountID: accountID,
		BetRef:    betRef,
	})
	if err != nil {
		return nil, err
	}

	return rowsToEntries(rows), nil
}

// ListByAccount lists an account's entries, newest first.
func (r *EntryRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.LedgerEntry, error) {
	rows, err := r.queries.ListEntriesByAccount(ctx, generated.ListEntriesByAccountParams{
		AccountID: accountID,
		Limit:     int32(limit),
		Offset:    int32(offset),
	})
	if err != nil {
		return nil, err
	}

	return rowsToEntries(rows), nil
}

// SumByAccount adds up every amount posted to an account.
func (r *EntryRepository) SumByAccount(ctx context.Context, accountID string) (decimal.Decimal, error) {
	total, err := r.queries.SumEntriesByAccount(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}

	return toDecimal(total)
}

func rowsToEntries(rows []generated.LedgerEntry) []*domain.LedgerEntry {
	entries := make([]*domain.LedgerEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, rowToEntry(row))
	}
	return entries
}

func rowToEntry(row generated.LedgerEntry) *domain.LedgerEntry {
	var metadata map[string]any
	if row.Metadata != nil {
		_ = json.Unmarshal(row.Metadata, &metadata)
	}

	var correlated *int64
	if row.CorrelatedEntryID.Valid {
		id := row.CorrelatedEntryID.Int64
		correlated = &id
	}

	return &domain.LedgerEntry{
		ID:                row.ID,
		AccountID:         row.AccountID,
		ExternalTxnRef:    row.ExternalTxnRef,
		OpKind:            domain.OpKind(row.OpKind),
		Amount:            numericToDecimal(row.Amount),
		BalanceBefore:     numericToDecimal(row.BalanceBefore),
		BalanceAfter:      numericToDecimal(row.BalanceAfter),
		GameRef:           row.GameRef,
		BetRef:            row.BetRef,
		TransferID:        textPtr(row.TransferID),
		CorrelatedEntryID: correlated,
		AccountVersion:    row.AccountVersion,
		Metadata:          metadata,
		CreatedAt:         row.CreatedAt.Time,
	}
}
