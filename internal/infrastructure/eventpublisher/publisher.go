package eventpublisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/gowallet/internal/domain"
	"github.com/iho/gowallet/internal/usecase"
)

// EventPublisher relays events from the outbox to a Publisher.
type EventPublisher struct {
	outboxRepo usecase.OutboxRepository
	publisher  Publisher
	metrics    Metrics
	logger     zerolog.Logger
	batchSize  int
	interval   time.Duration
	retention  time.Duration
}

// Publisher defines the interface for publishing events to external systems.
type Publisher interface {
	Publish(ctx context.Context, event *domain.OutboxEvent) error
}

// Metrics records relay progress.
type Metrics interface {
	RecordOutboxPublished()
	RecordOutboxFailure()
}

// publishedCleaner is implemented by outbox stores that can purge old
// published events.
type publishedCleaner interface {
	DeletePublished(ctx context.Context, before time.Time) (int64, error)
}

// Config for EventPublisher.
type Config struct {
	OutboxRepo usecase.OutboxRepository
	Publisher  Publisher
	Metrics    Metrics
	Logger     zerolog.Logger
	BatchSize  int           // Number of events to fetch per batch
	Interval   time.Duration // Polling interval
	Retention  time.Duration // How long published events are kept; zero keeps them forever
}

// NewEventPublisher creates a new EventPublisher.
func NewEventPublisher(cfg Config) *EventPublisher {
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 100
	}
	if cfg.Interval == 0 {
		cfg.Interval = 5 * time.Second
	}

	return &EventPublisher{
		outboxRepo: cfg.OutboxRepo,
		publisher:  cfg.Publisher,
		metrics:    cfg.Metrics,
		logger:     cfg.Logger.With().Str("component", "outbox-relay").Logger(),
		batchSize:  cfg.BatchSize,
		interval:   cfg.Interval,
		retention:  cfg.Retention,
	}
}

// Start begins the event publishing worker.
// It runs continuously until the context is cancelled.
func (ep *EventPublisher) Start(ctx context.Context) error {
	ep.logger.Info().
		Int("batch_size", ep.batchSize).
		Dur("interval", ep.interval).
		Msg("event publisher started")

	ticker := time.NewTicker(ep.interval)
	defer ticker.Stop()

	// Process immediately on start
	if err := ep.processEvents(ctx); err != nil {
		ep.logger.Error().Err(err).Msg("error processing events on start")
	}

	for {
		select {
		case <-ctx.Done():
			ep.logger.Info().Msg("event publisher shutting down")
			return ctx.Err()
		case <-ticker.C:
			if err := ep.processEvents(ctx); err != nil {
				ep.logger.Error().Err(err).Msg("error processing events")
			}
			ep.cleanup(ctx)
		}
	}
}

// processEvents fetches and publishes a batch of unpublished events.
func (ep *EventPublisher) processEvents(ctx context.Context) error {
	events, err := ep.outboxRepo.GetUnpublished(ctx, ep.batchSize)
	if err != nil {
		return err
	}

	if len(events) == 0 {
		return nil
	}

	ep.logger.Debug().Int("count", len(events)).Msg("processing events")

	for _, event := range events {
		if err := ep.publisher.Publish(ctx, event); err != nil {
			ep.logger.Error().Err(err).
				Str("event_id", event.ID).
				Str("event_type", event.EventType).
				Msg("failed to publish event")
			if ep.metrics != nil {
				ep.metrics.RecordOutboxFailure()
			}
			// Continue processing other events even if one fails
			continue
		}

		if ep.metrics != nil {
			ep.metrics.RecordOutboxPublished()
		}

		if err := ep.outboxRepo.MarkPublished(ctx, event.ID, time.Now().UTC()); err != nil {
			// the event will be published again on the next tick
			ep.logger.Error().Err(err).Str("event_id", event.ID).Msg("failed to mark event as published")
		}
	}

	return nil
}

func (ep *EventPublisher) cleanup(ctx context.Context) {
	if ep.retention <= 0 {
		return
	}

	cleaner, ok := ep.outboxRepo.(publishedCleaner)
	if !ok {
		return
	}

	deleted, err := cleaner.DeletePublished(ctx, time.Now().UTC().Add(-ep.retention))
	if err != nil {
		ep.logger.Warn().Err(err).Msg("failed to purge published events")
		return
	}
	if deleted > 0 {
		ep.logger.Debug().Int64("deleted", deleted).Msg("purged published events")
	}
}

// LogPublisher is a simple publisher that logs events.
type LogPublisher struct {
	logger zerolog.Logger
}

// NewLogPublisher creates a new LogPublisher.
func NewLogPublisher(logger zerolog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish logs the event.
func (p *LogPublisher) Publish(_ context.Context, event *domain.OutboxEvent) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return err
	}

	p.logger.Info().
		Str("event_id", event.ID).
		Str("event_type", event.EventType).
		Str("aggregate_type", event.AggregateType).
		Str("aggregate_id", event.AggregateID).
		RawJSON("payload", payload).
		Msg("event published")

	return nil
}
