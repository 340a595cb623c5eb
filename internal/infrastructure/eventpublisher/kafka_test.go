package eventpublisher

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/gowallet/internal/domain"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaPublisher_Publish(t *testing.T) {
	writer := &fakeWriter{}
	pub := newKafkaPublisher(writer)

	created := time.Date(2024, 3, 2, 10, 42, 47, 0, time.UTC)
	err := pub.Publish(context.Background(), &domain.OutboxEvent{
		ID:            "evt-1",
		AggregateID:   "acc-1",
		AggregateType: domain.AggregateTypeAccount,
		EventType:     domain.EventTypeWalletOperationApplied,
		Payload:       map[string]any{"balance_after": "70"},
		CreatedAt:     created,
	})
	require.NoError(t, err)

	require.Len(t, writer.messages, 1)
	msg := writer.messages[0]
	assert.Equal(t, "acc-1", string(msg.Key))
	assert.Equal(t, created, msg.Time)
	assert.Equal(t, "event_type", msg.Headers[0].Key)
	assert.Equal(t, domain.EventTypeWalletOperationApplied, string(msg.Headers[0].Value))

	var env Envelope
	require.NoError(t, json.Unmarshal(msg.Value, &env))
	assert.Equal(t, "evt-1", env.ID)
	assert.Equal(t, "70", env.Payload["balance_after"])
	assert.True(t, env.OccurredAt.Equal(created))

	require.NoError(t, pub.Close())
	assert.True(t, writer.closed)
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	boom := errors.New("leader not available")
	pub := newKafkaPublisher(&fakeWriter{err: boom})

	err := pub.Publish(context.Background(), &domain.OutboxEvent{ID: "evt-9"})
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "evt-9")
}

func TestNewKafkaPublisherConfiguresWriter(t *testing.T) {
	pub := NewKafkaPublisher(KafkaConfig{Brokers: []string{"localhost:9092"}, Topic: "wallet-events"})

	writer, ok := pub.writer.(*kafka.Writer)
	require.True(t, ok)
	assert.Equal(t, "wallet-events", writer.Topic)
	assert.Equal(t, 10*time.Second, writer.WriteTimeout)
	assert.IsType(t, &kafka.Hash{}, writer.Balancer)
}
