package postgres

import (
	"context"
	"time"

	"github.com/iho/gowallet/internal/domain"
	"github.com/iho/gowallet/internal/usecase"
)

// NullOutboxRepository drops every event. It is used when EVENT_PUBLISHER is
// "none" so that no outbox rows pile up without a relay to drain them.
type NullOutboxRepository struct{}

// NewNullOutboxRepository creates a new NullOutboxRepository.
func NewNullOutboxRepository() *NullOutboxRepository {
	return &NullOutboxRepository{}
}

func (r *NullOutboxRepository) Create(_ context.Context, _ usecase.Transaction, _ *domain.OutboxEvent) error {
	return nil
}

func (r *NullOutboxRepository) GetUnpublished(_ context.Context, _ int) ([]*domain.OutboxEvent, error) {
	return nil, nil
}

func (r *NullOutboxRepository) MarkPublished(_ context.Context, _ string, _ time.Time) error {
	return nil
}
