package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/iho/gowallet/internal/adapter/http/handler"
	"github.com/iho/gowallet/internal/adapter/http/middleware"
	"github.com/iho/gowallet/internal/adapter/provider"
	"github.com/iho/gowallet/internal/domain"
	"github.com/iho/gowallet/internal/usecase"
)

// Webhook mounts a provider adapter under a path prefix.
type Webhook struct {
	Prefix  string
	Adapter provider.Adapter
}

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	Logger          zerolog.Logger
	AccountHandler  *handler.AccountHandler
	TransferHandler *handler.TransferHandler
	EntryHandler    *handler.EntryHandler
	LedgerHandler   *handler.LedgerHandler
	HealthHandler   *handler.HealthHandler

	// Metrics and MetricsHandler are optional.
	Metrics        middleware.HTTPMetrics
	MetricsHandler http.Handler

	// TokenVerifier enables bearer authentication on /api/v1. Without it
	// every request acts as the system operator.
	TokenVerifier      middleware.TokenVerifier
	CORSAllowedOrigins []string

	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration

	ProviderHandler *provider.Handler
	Webhooks        []Webhook
	WebhookLimiter  *middleware.RateLimiter
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery)
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.IdempotencyKeyHeader},
		ExposedHeaders:   []string{middleware.IdempotencyReplayHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	if cfg.ProviderHandler != nil {
		for _, wh := range cfg.Webhooks {
			r.Route(wh.Prefix, func(r chi.Router) {
				if cfg.WebhookLimiter != nil {
					r.Use(cfg.WebhookLimiter.Limit)
				}
				cfg.ProviderHandler.Mount(r, wh.Adapter)
			})
		}
	}

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.TokenVerifier != nil {
			r.Use(middleware.Authenticate(cfg.TokenVerifier))
		} else {
			r.Use(middleware.StaticOperator(domain.SystemOperator))
		}
		r.Use(middleware.RequireRole(domain.RoleViewer))

		if cfg.IdempotencyStore != nil {
			r.Use(middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL).Wrap)
		}

		admin := middleware.RequireRole(domain.RoleAdmin)
		operator := middleware.RequireRole(domain.RoleOperator)

		r.Route("/accounts", func(r chi.Router) {
			r.With(admin).Post("/", cfg.AccountHandler.Create)
			r.Get("/", cfg.AccountHandler.List)
			r.Get("/{id}", cfg.AccountHandler.Get)
			r.Get("/{id}/balance", cfg.AccountHandler.Balance)
			r.Get("/{id}/audit", cfg.AccountHandler.Audit)
			r.With(admin).Post("/{id}/status", cfg.AccountHandler.SetStatus)
			r.Get("/{id}/entries", cfg.EntryHandler.ListByAccount)
			r.Get("/{id}/transfers", cfg.TransferHandler.ListByAccount)
			r.Get("/{id}/reconcile", cfg.LedgerHandler.ReconcileAccount)
		})

		r.Get("/entries", cfg.EntryHandler.ListByExternalRef)

		r.Route("/transfers", func(r chi.Router) {
			r.With(operator).Post("/", cfg.TransferHandler.Create)
			r.Get("/{id}", cfg.TransferHandler.Get)
		})

		r.Route("/ledger", func(r chi.Router) {
			r.Get("/consistency", cfg.LedgerHandler.CheckConsistency)
			r.With(admin).Get("/reconciliation", cfg.LedgerHandler.Report)
		})
	})

	return r
}
