package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/iho/gowallet/internal/domain"
)

func fastRetrier(maxRetries int) *Retrier {
	r := NewRetrier(WithMaxRetries(maxRetries), WithBackoff(time.Millisecond, 2*time.Millisecond))
	r.maxElapsedTime = time.Second
	return r
}

func TestRetrierRetriesOnRetryableError(t *testing.T) {
	r := fastRetrier(2)

	attempts := 0
	err := r.Retry(context.Background(), func() error {
		attempts++
		if attempts < 2 {
			return &pgconn.PgError{Code: pgErrDeadlock}
		}
		return nil
	})

	if err != nil {
		t.Fatalf("expected success after retry, got %v", err)
	}
	if attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", attempts)
	}
}

func TestRetrierStopsOnPermanentError(t *testing.T) {
	r := NewRetrier()
	attempts := 0
	permanentErr := errors.New("permanent")

	err := r.Retry(context.Background(), func() error {
		attempts++
		return permanentErr
	})

	if !errors.Is(err, permanentErr) {
		t.Fatalf("expected permanent error, got %v", err)
	}
	if errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatal("permanent error must not be reported as store unavailable")
	}
	if attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", attempts)
	}
}

func TestRetrierDomainErrorsPassThrough(t *testing.T) {
	r := NewRetrier()

	dup := &domain.DuplicateRequestError{}
	err := r.Retry(context.Background(), func() error {
		return fmt.Errorf("apply: %w", dup)
	})

	if _, ok := domain.AsDuplicate(err); !ok {
		t.Fatalf("expected duplicate error to pass through, got %v", err)
	}
}

func TestRetrierExhaustionBecomesStoreUnavailable(t *testing.T) {
	r := fastRetrier(2)

	attempts := 0
	err := r.Retry(context.Background(), func() error {
		attempts++
		return domain.ErrVersionConflict
	})

	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	if !errors.Is(err, domain.ErrVersionConflict) {
		t.Fatalf("expected cause to be kept, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"deadlock", &pgconn.PgError{Code: pgErrDeadlock}, true},
		{"serialization", &pgconn.PgError{Code: pgErrSerializationFailure}, true},
		{"unique violation", fmt.Errorf("insert: %w", &pgconn.PgError{Code: pgErrUniqueViolation}), true},
		{"check violation", &pgconn.PgError{Code: "23514"}, false},
		{"version conflict", domain.ErrVersionConflict, true},
		{"write conflict", fmt.Errorf("commit: %w", domain.ErrWriteConflict), true},
		{"insufficient funds", domain.ErrInsufficientFunds, false},
		{"generic", errors.New("other"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRetryableError(tt.err); got != tt.want {
				t.Fatalf("isRetryableError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
