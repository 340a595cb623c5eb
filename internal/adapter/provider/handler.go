package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/gowallet/internal/domain"
	"github.com/iho/gowallet/internal/usecase"
)

// MaxBodyBytes bounds a callback body.
const MaxBodyBytes = 1 << 20

// Wallet is the part of the engine the handler drives.
type Wallet interface {
	GetBalance(ctx context.Context, accountRef string) (decimal.Decimal, error)
	LookupAccount(ctx context.Context, accountRef string) (*domain.Account, error)
	Apply(ctx context.Context, op usecase.Operation) (*domain.OperationResult, error)
}

// Metrics records webhook replies.
type Metrics interface {
	RecordWebhook(provider, method, code string, duration time.Duration)
}

// Handler funnels every adapter's callbacks into the wallet engine.
type Handler struct {
	wallet  Wallet
	events  usecase.SeamlessEventRepository
	metrics Metrics
}

// NewHandler creates a Handler. events and metrics may be nil.
func NewHandler(wallet Wallet, events usecase.SeamlessEventRepository, metrics Metrics) *Handler {
	return &Handler{
		wallet:  wallet,
		events:  events,
		metrics: metrics,
	}
}

// Mount registers a POST route for each of the adapter's methods.
func (h *Handler) Mount(r chi.Router, adapter Adapter) {
	for path, method := range adapter.Routes() {
		r.Post("/"+strings.TrimPrefix(path, "/"), h.serve(adapter, method))
	}
}

func (h *Handler) serve(adapter Adapter, method Method) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := r.Context()
		logger := zerolog.Ctx(ctx).With().
			Str("provider", adapter.Name()).
			Str("method", string(method)).
			Logger()
		ctx = logger.WithContext(ctx)

		outcome := h.handle(ctx, adapter, method, r)
		resp := adapter.Encode(method, outcome)

		if outcome.Err != nil {
			logger.Warn().Err(outcome.Err).Str("code", resp.Code).Msg("callback rejected")
		}

		if h.metrics != nil {
			h.metrics.RecordWebhook(adapter.Name(), string(method), resp.Code, time.Since(start))
		}

		writeResponse(w, resp)
	}
}

func (h *Handler) handle(ctx context.Context, adapter Adapter, method Method, r *http.Request) Outcome {
	body, err := io.ReadAll(io.LimitReader(r.Body, MaxBodyBytes+1))
	if err != nil {
		return Outcome{Err: fmt.Errorf("%w: read body: %v", domain.ErrInvalidRequest, err)}
	}
	if len(body) > MaxBodyBytes {
		return Outcome{Err: fmt.Errorf("%w: body too large", domain.ErrInvalidRequest)}
	}

	call, err := adapter.Decode(method, r.Header, body)
	if err != nil {
		return Outcome{Err: err}
	}

	h.record(ctx, adapter.Name(), call)

	return h.Dispatch(ctx, call)
}

// Dispatch runs a decoded call against the engine.
func (h *Handler) Dispatch(ctx context.Context, call *Call) Outcome {
	switch call.Method {
	case MethodGetBalance, MethodPushBet:
		balance, err := h.wallet.GetBalance(ctx, call.AccountRef)
		if err != nil {
			return Outcome{Err: err}
		}
		return Outcome{Balance: balance, BalanceBefore: balance, HasBalance: true}

	case MethodMobileLogin:
		account, err := h.wallet.LookupAccount(ctx, call.AccountRef)
		if err != nil {
			return Outcome{Err: err}
		}
		if !account.IsActive() {
			return Outcome{Err: domain.ErrAccountBanned, Balance: account.Balance, BalanceBefore: account.Balance, HasBalance: true}
		}
		return Outcome{Balance: account.Balance, BalanceBefore: account.Balance, HasBalance: true}
	}

	return h.applyBatch(ctx, call)
}

// applyBatch applies a call's operations in order and stops at the first
// failure. Duplicates are skipped; a batch that applied nothing new reports
// the duplicate.
func (h *Handler) applyBatch(ctx context.Context, call *Call) Outcome {
	if len(call.Operations) == 0 {
		return Outcome{Err: fmt.Errorf("%w: no transactions", domain.ErrInvalidRequest)}
	}

	var (
		outcome   Outcome
		applied   []*domain.OperationResult
		duplicate error
	)

	for _, op := range call.Operations {
		res, err := h.wallet.Apply(ctx, op)
		if errors.Is(err, domain.ErrDuplicateRequest) {
			duplicate = err
			continue
		}
		if err != nil {
			outcome.Err = err
			break
		}
		applied = append(applied, res)
	}

	if outcome.Err == nil && len(applied) == 0 {
		outcome.Err = duplicate
	}

	if outcome.Err == nil && duplicate == nil {
		outcome.BalanceBefore = applied[0].BalanceBefore
		outcome.Balance = applied[len(applied)-1].BalanceAfter
		outcome.HasBalance = true
		return outcome
	}

	// replies after a failure or a replay carry the live balance
	balance, err := h.wallet.GetBalance(ctx, call.AccountRef)
	if err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Msg("failed to read balance for reply")
		return outcome
	}

	outcome.BalanceBefore = balance
	if len(applied) > 0 {
		outcome.BalanceBefore = applied[0].BalanceBefore
	}
	outcome.Balance = balance
	outcome.HasBalance = true

	return outcome
}

func (h *Handler) record(ctx context.Context, provider string, call *Call) {
	if h.events == nil {
		return
	}

	event := &domain.SeamlessEvent{
		Provider:    provider,
		Method:      string(call.Method),
		AccountRef:  call.AccountRef,
		GameTypeID:  call.GameTypeID,
		GameRef:     call.GameRef,
		RequestTime: call.RequestTime,
		RawData:     call.Raw,
		CreatedAt:   time.Now().UTC(),
	}

	if err := h.events.Create(ctx, event); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to record seamless event")
	}
}

func writeResponse(w http.ResponseWriter, resp Response) {
	status := resp.HTTPStatus
	if status == 0 {
		status = http.StatusOK
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp.Body)
}

// CodeLabel formats an integer status code for Response.Code.
func CodeLabel(code int) string {
	return strconv.Itoa(code)
}
