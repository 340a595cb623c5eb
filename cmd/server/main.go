package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	httpAdapter "github.com/iho/gowallet/internal/adapter/http"
	"github.com/iho/gowallet/internal/adapter/http/handler"
	"github.com/iho/gowallet/internal/adapter/http/middleware"
	"github.com/iho/gowallet/internal/adapter/provider"
	"github.com/iho/gowallet/internal/infrastructure/auth"
	"github.com/iho/gowallet/internal/infrastructure/config"
	"github.com/iho/gowallet/internal/infrastructure/logger"
	"github.com/iho/gowallet/internal/infrastructure/metrics"
	"github.com/iho/gowallet/internal/usecase"
)

const limiterCleanupInterval = time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	zerolog.DefaultContextLogger = &log

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
	log.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	st, err := buildStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close()

	publisher, closePublisher, err := buildPublisher(cfg, log)
	if err != nil {
		return err
	}
	defer closePublisher()
	if publisher == nil {
		st.outbox = nullOutbox()
	}

	wallet := usecase.NewWalletUseCase(usecase.WalletDeps{
		TxManager: st.txManager,
		Accounts:  st.accounts,
		Entries:   st.entries,
		Records:   st.records,
		Outbox:    st.outbox,
		Index:     st.index,
		Cache:     st.cache,
		Retrier:   st.retrier,
		IDGen:     st.idGen,
		Metrics:   m,
		TxTimeout: cfg.TxTimeout,
	})
	accountUC := usecase.NewAccountUseCase(st.txManager, st.accounts, st.audit, st.outbox, st.cache, st.idGen)
	transferUC := usecase.NewTransferUseCase(st.txManager, st.accounts, st.transfers, st.entries, st.audit, st.outbox, st.retrier, st.idGen)
	entryUC := usecase.NewEntryUseCase(st.entries)
	ledgerUC := usecase.NewLedgerUseCase(st.ledger)
	reconcileUC := usecase.NewReconciliationUseCase(st.accounts, st.entries, st.ledger, m)

	webhookLimiter := middleware.NewRateLimiter("webhook", cfg.WebhookRateLimit, cfg.WebhookRateBurst, m)

	routerCfg := httpAdapter.RouterConfig{
		Logger:             log,
		AccountHandler:     handler.NewAccountHandler(accountUC),
		TransferHandler:    handler.NewTransferHandler(transferUC, m),
		EntryHandler:       handler.NewEntryHandler(entryUC),
		LedgerHandler:      handler.NewLedgerHandler(ledgerUC, reconcileUC),
		HealthHandler:      handler.NewHealthHandler(st.pingers),
		Metrics:            m,
		MetricsHandler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		IdempotencyStore:   st.idempotency,
		IdempotencyTTL:     cfg.IdempotencyTTL,
		ProviderHandler:    provider.NewHandler(wallet, st.events, m),
		Webhooks:           webhooks(cfg),
		WebhookLimiter:     webhookLimiter,
	}
	if cfg.AuthEnabled {
		routerCfg.TokenVerifier = auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
	}
	for _, wh := range routerCfg.Webhooks {
		log.Info().Str("provider", wh.Adapter.Name()).Str("prefix", wh.Prefix).Msg("provider webhook mounted")
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      httpAdapter.NewRouter(routerCfg),
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("port", cfg.HTTPPort).Str("store", cfg.StoreDriver).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		ticker := time.NewTicker(limiterCleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if n := webhookLimiter.CleanupLimiters(10 * limiterCleanupInterval); n > 0 {
					log.Debug().Int("removed", n).Msg("evicted idle rate limiters")
				}
			}
		}
	})

	if publisher != nil {
		relay := newRelay(cfg, st.outbox, publisher, m, log)
		g.Go(func() error {
			if err := relay.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	return g.Wait()
}
