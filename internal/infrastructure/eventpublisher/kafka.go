package eventpublisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/iho/gowallet/internal/domain"
)

// messageWriter is the part of *kafka.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaConfig configures the Kafka publisher.
type KafkaConfig struct {
	Brokers      []string
	Topic        string
	WriteTimeout time.Duration
}

// KafkaPublisher publishes outbox events to a Kafka topic, keyed by aggregate
// so events of one account stay ordered within a partition.
type KafkaPublisher struct {
	writer messageWriter
}

// Envelope is the message value written for every event.
type Envelope struct {
	ID            string         `json:"id"`
	EventType     string         `json:"event_type"`
	AggregateType string         `json:"aggregate_type"`
	AggregateID   string         `json:"aggregate_id"`
	Payload       map[string]any `json:"payload"`
	OccurredAt    time.Time      `json:"occurred_at"`
}

// NewKafkaPublisher creates a publisher writing synchronously to cfg.Topic.
func NewKafkaPublisher(cfg KafkaConfig) *KafkaPublisher {
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 10 * time.Second
	}

	return newKafkaPublisher(&kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		MaxAttempts:  3,
		WriteTimeout: cfg.WriteTimeout,
	})
}

func newKafkaPublisher(writer messageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: writer}
}

// Publish writes one event.
func (p *KafkaPublisher) Publish(ctx context.Context, event *domain.OutboxEvent) error {
	value, err := json.Marshal(Envelope{
		ID:            event.ID,
		EventType:     event.EventType,
		AggregateType: event.AggregateType,
		AggregateID:   event.AggregateID,
		Payload:       event.Payload,
		OccurredAt:    event.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("encode event %s: %w", event.ID, err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.AggregateID),
		Value: value,
		Time:  event.CreatedAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
			{Key: "event_id", Value: []byte(event.ID)},
		},
	})
	if err != nil {
		return fmt.Errorf("write event %s: %w", event.ID, err)
	}

	return nil
}

// Close flushes and closes the writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
