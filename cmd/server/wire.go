package main

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	httpAdapter "github.com/iho/gowallet/internal/adapter/http"
	"github.com/iho/gowallet/internal/adapter/http/handler"
	"github.com/iho/gowallet/internal/adapter/provider/gsc"
	"github.com/iho/gowallet/internal/adapter/provider/live22"
	"github.com/iho/gowallet/internal/adapter/repository/memory"
	postgresRepo "github.com/iho/gowallet/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/gowallet/internal/adapter/repository/redis"
	"github.com/iho/gowallet/internal/infrastructure/config"
	"github.com/iho/gowallet/internal/infrastructure/eventpublisher"
	"github.com/iho/gowallet/internal/infrastructure/metrics"
	"github.com/iho/gowallet/internal/infrastructure/postgres"
	"github.com/iho/gowallet/internal/infrastructure/redis"
	"github.com/iho/gowallet/internal/usecase"
)

// Webhook prefixes the providers expect.
const (
	gscPrefix    = "/api/Seamless"
	live22Prefix = "/api/live22"
)

// stores is everything the use cases persist through, for one driver.
type stores struct {
	txManager usecase.TransactionManager
	accounts  usecase.AccountRepository
	entries   usecase.EntryRepository
	records   usecase.IdempotencyRepository
	transfers usecase.TransferRepository
	audit     usecase.AuditRepository
	outbox    usecase.OutboxRepository
	events    usecase.SeamlessEventRepository
	ledger    usecase.LedgerRepository
	retrier   usecase.Retrier
	idGen     usecase.IDGenerator

	// index, cache and idempotency are backed by redis when configured.
	index       usecase.IdempotencyIndex
	cache       usecase.Cache
	idempotency usecase.IdempotencyStore

	pingers map[string]handler.Pinger
	closers []func()
}

func (s *stores) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func buildStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*stores, error) {
	var (
		st  *stores
		err error
	)

	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		st = memoryStores(cfg, log)
	default:
		st, err = postgresStores(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
	}

	if cfg.RedisURL == "" {
		st.index = memory.NewIdempotencyIndex()
		log.Info().Msg("redis not configured, using in-process idempotency index")
		return st, nil
	}

	client, err := redis.NewClient(ctx, redis.Config{
		URL:             cfg.RedisURL,
		PoolSize:        cfg.RedisPoolSize,
		DialTimeout:     cfg.RedisDialTimeout,
		ConnectAttempts: cfg.RedisConnectAttempts,
	}, log)
	if err != nil {
		st.close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	log.Info().Msg("connected to redis")
	withRedis(st, client, cfg)

	return st, nil
}

func withRedis(st *stores, client *goredis.Client, cfg *config.Config) {
	st.index = redisRepo.NewIdempotencyIndex(client, cfg.IdempotencyTTL)
	st.cache = redisRepo.NewCache(client)
	st.idempotency = redisRepo.NewIdempotencyStore(client)
	st.pingers["redis"] = handler.PingerFunc(func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	})
	st.closers = append(st.closers, func() { _ = client.Close() })
}

func memoryStores(cfg *config.Config, log zerolog.Logger) *stores {
	store := memory.NewStore()
	log.Warn().Msg("using in-memory store, balances are lost on restart")

	return &stores{
		txManager: store,
		accounts:  memory.NewAccountRepository(store),
		entries:   memory.NewEntryRepository(store),
		records:   memory.NewIdempotencyRepository(store),
		transfers: memory.NewTransferRepository(store),
		audit:     memory.NewAuditRepository(store),
		outbox:    memory.NewOutboxRepository(store),
		events:    memory.NewSeamlessEventRepository(store),
		ledger:    memory.NewLedgerRepository(store),
		retrier:   newRetrier(cfg, log),
		idGen:     postgresRepo.NewULIDGenerator(),
		pingers:   map[string]handler.Pinger{},
	}
}

func postgresStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*stores, error) {
	if cfg.MigrateOnStart {
		if err := postgres.RunMigrations(cfg.DatabaseURL, log); err != nil {
			return nil, err
		}
	}

	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	log.Info().Msg("connected to postgres")

	return &stores{
		txManager: postgresRepo.NewTxManager(pool),
		accounts:  postgresRepo.NewAccountRepository(pool),
		entries:   postgresRepo.NewEntryRepository(pool),
		records:   postgresRepo.NewIdempotencyRepository(pool),
		transfers: postgresRepo.NewTransferRepository(pool),
		audit:     postgresRepo.NewAuditRepository(pool),
		outbox:    postgresRepo.NewOutboxRepository(pool),
		events:    postgresRepo.NewSeamlessEventRepository(pool),
		ledger:    postgresRepo.NewLedgerRepository(pool),
		retrier:   newRetrier(cfg, log),
		idGen:     postgresRepo.NewULIDGenerator(),
		pingers:   map[string]handler.Pinger{"postgres": pool},
		closers:   []func(){pool.Close},
	}, nil
}

func newRetrier(cfg *config.Config, log zerolog.Logger) *postgresRepo.Retrier {
	return postgresRepo.NewRetrier(
		postgresRepo.WithMaxRetries(cfg.StoreMaxRetries),
		postgresRepo.WithRetryLogger(log),
	)
}

func nullOutbox() usecase.OutboxRepository {
	return postgresRepo.NewNullOutboxRepository()
}

// buildPublisher returns the outbox publisher for cfg, or nil when events
// are not published. The returned func releases the publisher.
func buildPublisher(cfg *config.Config, log zerolog.Logger) (eventpublisher.Publisher, func(), error) {
	noop := func() {}

	switch cfg.EventPublisher {
	case config.EventPublisherNone:
		return nil, noop, nil
	case config.EventPublisherLog:
		return eventpublisher.NewLogPublisher(log), noop, nil
	case config.EventPublisherKafka:
		if len(cfg.Kafka.Brokers) == 0 || cfg.Kafka.Topic == "" {
			return nil, noop, fmt.Errorf("kafka publisher needs KAFKA_BROKERS and KAFKA_TOPIC")
		}
		p := eventpublisher.NewKafkaPublisher(eventpublisher.KafkaConfig{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.Topic,
		})
		return p, func() {
			if err := p.Close(); err != nil {
				log.Warn().Err(err).Msg("failed to close kafka writer")
			}
		}, nil
	default:
		return nil, noop, fmt.Errorf("unknown event publisher %q", cfg.EventPublisher)
	}
}

func newRelay(
	cfg *config.Config,
	outbox usecase.OutboxRepository,
	publisher eventpublisher.Publisher,
	m *metrics.Metrics,
	log zerolog.Logger,
) *eventpublisher.EventPublisher {
	return eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: outbox,
		Publisher:  publisher,
		Metrics:    m,
		Logger:     log,
		BatchSize:  cfg.OutboxBatchSize,
		Interval:   cfg.OutboxInterval,
		Retention:  cfg.OutboxRetention,
	})
}

// webhooks lists the provider adapters with credentials configured.
func webhooks(cfg *config.Config) []httpAdapter.Webhook {
	var out []httpAdapter.Webhook
	if cfg.GSC.Enabled() {
		out = append(out, httpAdapter.Webhook{
			Prefix: gscPrefix,
			Adapter: gsc.New(gsc.Config{
				OperatorCode: cfg.GSC.OperatorCode,
				SecretKey:    cfg.GSC.SecretKey,
			}),
		})
	}
	if cfg.Live22.Enabled() {
		out = append(out, httpAdapter.Webhook{
			Prefix: live22Prefix,
			Adapter: live22.New(live22.Config{
				OperatorID: cfg.Live22.OperatorID,
				SecretKey:  cfg.Live22.SecretKey,
			}),
		})
	}
	return out
}
