package eventpublisher

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/gowallet/internal/domain"
	"github.com/iho/gowallet/internal/usecase"
)

func TestProcessEventsPublishesAndMarks(t *testing.T) {
	repo := &stubOutboxRepo{
		events: []*domain.OutboxEvent{{ID: "evt-1", EventType: "type"}},
	}
	pub := &stubPublisher{}
	counts := &relayCounts{}
	ep := newTestPublisher(repo, pub)
	ep.metrics = counts

	require.NoError(t, ep.processEvents(context.Background()))

	require.Len(t, pub.published, 1)
	assert.Equal(t, []string{"evt-1"}, repo.marked)
	assert.Equal(t, 1, counts.published)
}

func TestProcessEventsContinuesOnPublishError(t *testing.T) {
	repo := &stubOutboxRepo{
		events: []*domain.OutboxEvent{
			{ID: "evt-1", EventType: "type"},
			{ID: "evt-2", EventType: "type"},
		},
	}
	pub := &stubPublisher{
		errorsByID: map[string]error{"evt-1": errors.New("fail")},
	}
	counts := &relayCounts{}
	ep := newTestPublisher(repo, pub)
	ep.metrics = counts

	require.NoError(t, ep.processEvents(context.Background()))

	require.Len(t, pub.published, 1)
	assert.Equal(t, "evt-2", pub.published[0].ID)
	assert.Equal(t, []string{"evt-2"}, repo.marked)
	assert.Equal(t, 1, counts.failed)
}

func TestProcessEventsPropagatesFetchError(t *testing.T) {
	repo := &stubOutboxRepo{fetchErr: errors.New("db down")}
	ep := newTestPublisher(repo, &stubPublisher{})

	assert.EqualError(t, ep.processEvents(context.Background()), "db down")
}

func TestCleanupPurgesPublished(t *testing.T) {
	repo := &stubOutboxRepo{}
	ep := newTestPublisher(repo, &stubPublisher{})

	ep.cleanup(context.Background())
	assert.True(t, repo.purgedBefore.IsZero(), "no retention, no purge")

	ep.retention = time.Hour
	ep.cleanup(context.Background())
	assert.WithinDuration(t, time.Now().Add(-time.Hour), repo.purgedBefore, time.Minute)
}

func TestStartStopsOnContextCancellation(t *testing.T) {
	repo := &stubOutboxRepo{}
	pub := &stubPublisher{}
	ep := newTestPublisher(repo, pub)
	ep.interval = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- ep.Start(ctx)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("publisher did not stop after cancel")
	}
}

func TestLogPublisherWritesEvent(t *testing.T) {
	var buf bytes.Buffer
	pub := NewLogPublisher(zerolog.New(&buf))

	err := pub.Publish(context.Background(), &domain.OutboxEvent{
		ID:          "evt-1",
		EventType:   domain.EventTypeWalletOperationApplied,
		AggregateID: "acc-1",
		Payload:     map[string]any{"external_txn_ref": "T1"},
	})
	require.NoError(t, err)

	assert.Contains(t, buf.String(), `"event_type":"wallet.operation.applied"`)
	assert.Contains(t, buf.String(), `"payload":{"external_txn_ref":"T1"}`)
}

func newTestPublisher(repo *stubOutboxRepo, pub *stubPublisher) *EventPublisher {
	return NewEventPublisher(Config{
		OutboxRepo: repo,
		Publisher:  pub,
		Logger:     zerolog.Nop(),
		BatchSize:  10,
		Interval:   5 * time.Millisecond,
	})
}

type stubOutboxRepo struct {
	events       []*domain.OutboxEvent
	marked       []string
	fetchErr     error
	purgedBefore time.Time
}

var _ usecase.OutboxRepository = (*stubOutboxRepo)(nil)

func (s *stubOutboxRepo) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	return nil
}

func (s *stubOutboxRepo) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	if len(s.events) <= limit {
		return append([]*domain.OutboxEvent(nil), s.events...), nil
	}
	return append([]*domain.OutboxEvent(nil), s.events[:limit]...), nil
}

func (s *stubOutboxRepo) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	s.marked = append(s.marked, id)
	return nil
}

func (s *stubOutboxRepo) DeletePublished(ctx context.Context, before time.Time) (int64, error) {
	s.purgedBefore = before
	return 1, nil
}

type stubPublisher struct {
	published  []*domain.OutboxEvent
	errorsByID map[string]error
}

func (s *stubPublisher) Publish(ctx context.Context, event *domain.OutboxEvent) error {
	if err := s.errorsByID[event.ID]; err != nil {
		return err
	}
	s.published = append(s.published, event)
	return nil
}

type relayCounts struct {
	published int
	failed    int
}

func (c *relayCounts) RecordOutboxPublished() { c.published++ }
func (c *relayCounts) RecordOutboxFailure()   { c.failed++ }
