package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"github.com/iho/gowallet/internal/domain"
)

// PostgreSQL error codes for retryable errors.
const (
	pgErrDeadlock             = "40P01"
	pgErrSerializationFailure = "40001"
	pgErrUniqueViolation      = "23505"
)

// Retrier implements usecase.Retrier with exponential backoff.
type Retrier struct {
	maxRetries      int
	initialInterval time.Duration
	maxInterval     time.Duration
	maxElapsedTime  time.Duration
	logger          zerolog.Logger
}

// RetrierOption configures a Retrier.
type RetrierOption func(*Retrier)

// WithMaxRetries sets how many times a transient failure is retried.
func WithMaxRetries(n int) RetrierOption {
	return func(r *Retrier) { r.maxRetries = n }
}

// WithBackoff sets the backoff intervals.
func WithBackoff(initial, maxInterval time.Duration) RetrierOption {
	return func(r *Retrier) {
		r.initialInterval = initial
		r.maxInterval = maxInterval
	}
}

// WithRetryLogger sets the logger used for retry warnings.
func WithRetryLogger(logger zerolog.Logger) RetrierOption {
	return func(r *Retrier) { r.logger = logger }
}

// NewRetrier creates a new PostgreSQL retrier with default settings.
func NewRetrier(opts ...RetrierOption) *Retrier {
	r := &Retrier{
		maxRetries:      3,
		initialInterval: 50 * time.Millisecond,
		maxInterval:     1 * time.Second,
		maxElapsedTime:  10 * time.Second,
		logger:          zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Retry executes an operation with exponential backoff on retryable errors.
// A transient error that outlives the retries is reported as
// domain.ErrStoreUnavailable.
func (r *Retrier) Retry(ctx context.Context, operation func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.initialInterval
	b.MaxInterval = r.maxInterval
	b.MaxElapsedTime = r.maxElapsedTime

	retryCount := 0

	err := backoff.Retry(func() error {
		err := operation()
		if err == nil {
			return nil
		}

		if !isRetryableError(err) {
			return backoff.Permanent(err)
		}

		retryCount++
		if retryCount > r.maxRetries {
			return backoff.Permanent(err)
		}

		r.logger.Warn().
			Err(err).
			Int("retry", retryCount).
			Msg("retryable database error, retrying")

		return err
	}, backoff.WithContext(b, ctx))

	if err != nil && isRetryableError(err) {
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}

	return err
}

// isRetryableError checks if a store error should trigger a retry.
func isRetryableError(err error) bool {
	if errors.Is(err, domain.ErrVersionConflict) || errors.Is(err, domain.ErrWriteConflict) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgErrDeadlock, pgErrSerializationFailure, pgErrUniqueViolation:
			return true
		}
		return false
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}

	return pgconn.Timeout(err) || pgconn.SafeToRetry(err)
}
