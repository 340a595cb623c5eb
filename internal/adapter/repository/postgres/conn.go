package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/iho/gowallet/internal/infrastructure/postgres/generated"
	"github.com/iho/gowallet/internal/usecase"
)

const uniqueViolation = "23505"

// DB is the subset of *pgxpool.Pool the repositories use.
type DB interface {
	generated.DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
}

func pgxTxFrom(tx usecase.Transaction) (pgx.Tx, error) {
	t, ok := tx.(*Tx)
	if !ok {
		return nil, fmt.Errorf("postgres: unexpected transaction type %T", tx)
	}
	return t.PgxTx(), nil
}

func queriesFor(tx usecase.Transaction) (*generated.Queries, error) {
	pgxTx, err := pgxTxFrom(tx)
	if err != nil {
		return nil, err
	}
	return generated.New(pgxTx), nil
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric

	_ = n.Scan(d.String())

	return n
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	d, _ := toDecimal(n)
	return d
}

func toDecimal(n pgtype.Numeric) (decimal.Decimal, error) {
	if !n.Valid || n.Int == nil {
		return decimal.Zero, nil
	}

	return decimal.NewFromBigInt(n.Int, n.Exp), nil
}

func timeToPgTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}

func textOrNull(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *s, Valid: true}
}

func textPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	s := t.String
	return &s
}
