// Package live22 implements the Live22 seamless wallet callbacks.
package live22

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gowallet/internal/adapter/provider"
	"github.com/iho/gowallet/internal/domain"
	"github.com/iho/gowallet/internal/usecase"
)

// Name identifies the provider in routes, logs and metrics.
const Name = "live22"

const dateTimeLayout = "2006-01-02 15:04:05"

// Config holds the operator credentials issued by Live22.
type Config struct {
	OperatorID string
	SecretKey  string
}

// Adapter implements provider.Adapter for Live22.
type Adapter struct {
	cfg Config
	now func() time.Time
}

// New creates a Live22 adapter.
func New(cfg Config) *Adapter {
	return &Adapter{cfg: cfg, now: time.Now}
}

var routes = map[string]provider.Method{
	"GetBalance": provider.MethodGetBalance,
	"Bet":        provider.MethodPlaceBet,
	"GameResult": provider.MethodGameResult,
	"Rollback":   provider.MethodRollback,
	"CashBonus":  provider.MethodBonus,
}

// functionNames is the FunctionName each method signs with.
var functionNames = map[provider.Method]string{
	provider.MethodGetBalance: "GetBalance",
	provider.MethodPlaceBet:   "Bet",
	provider.MethodGameResult: "GameResult",
	provider.MethodRollback:   "Rollback",
	provider.MethodBonus:      "CashBonus",
}

// Name implements provider.Adapter.
func (a *Adapter) Name() string { return Name }

// Routes implements provider.Adapter.
func (a *Adapter) Routes() map[string]provider.Method { return routes }

// Request is the body of every Live22 callback.
type Request struct {
	OperatorID      string      `json:"OperatorId"`
	RequestDateTime string      `json:"RequestDateTime"`
	PlayerID        string      `json:"PlayerId"`
	Signature       string      `json:"Signature"`
	TranID          string      `json:"TranId"`
	BetID           string      `json:"BetId"`
	GameCode        string      `json:"GameCode"`
	GameType        string      `json:"GameType"`
	BetAmount       json.Number `json:"BetAmount"`
	PayoutAmount    json.Number `json:"PayoutAmount"`
	BonusAmount     json.Number `json:"BonusAmount"`
}

// Response is the body of every Live22 reply.
type Response struct {
	Status           int         `json:"Status"`
	Description      string      `json:"Description"`
	ResponseDateTime string      `json:"ResponseDateTime"`
	Balance          json.Number `json:"Balance"`
	BeforeBalance    json.Number `json:"BeforeBalance,omitempty"`
}

// Sign computes hex(HMAC-SHA256(secret, FunctionName + RequestDateTime + OperatorId + PlayerId)).
func Sign(secret, functionName, requestDateTime, operatorID, playerID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(functionName + requestDateTime + operatorID + playerID))
	return hex.EncodeToString(mac.Sum(nil))
}

// Decode implements provider.Adapter.
func (a *Adapter) Decode(method provider.Method, _ http.Header, body []byte) (*provider.Call, error) {
	functionName, ok := functionNames[method]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported method %s", domain.ErrInvalidRequest, method)
	}

	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, fmt.Errorf("%w: malformed body: %v", domain.ErrInvalidRequest, err)
	}

	if req.OperatorID != a.cfg.OperatorID {
		return nil, fmt.Errorf("%w: unknown operator", domain.ErrInvalidSignature)
	}

	want := Sign(a.cfg.SecretKey, functionName, req.RequestDateTime, req.OperatorID, req.PlayerID)
	if !hmac.Equal([]byte(want), []byte(strings.ToLower(req.Signature))) {
		return nil, domain.ErrInvalidSignature
	}

	if req.PlayerID == "" {
		return nil, fmt.Errorf("%w: PlayerId is required", domain.ErrInvalidRequest)
	}

	call := &provider.Call{
		Method:     method,
		AccountRef: req.PlayerID,
		GameTypeID: req.GameType,
		GameRef:    req.GameCode,
		Raw:        json.RawMessage(body),
	}

	if t, err := time.Parse(dateTimeLayout, req.RequestDateTime); err == nil {
		call.RequestTime = &t
	}

	if !method.Mutates() {
		return call, nil
	}

	op, err := operation(method, req)
	if err != nil {
		return nil, err
	}
	call.Operations = []usecase.Operation{op}

	return call, nil
}

func operation(method provider.Method, req Request) (usecase.Operation, error) {
	ref := req.TranID
	if ref == "" {
		ref = req.BetID
	}
	if ref == "" {
		return usecase.Operation{}, fmt.Errorf("%w: TranId is required", domain.ErrInvalidRequest)
	}

	op := usecase.Operation{
		AccountRef:     req.PlayerID,
		ExternalTxnRef: ref,
		BetRef:         req.BetID,
		GameRef:        req.GameCode,
		Metadata:       map[string]any{"game_type": req.GameType},
	}

	var (
		amount json.Number
		field  string
	)

	switch method {
	case provider.MethodPlaceBet:
		op.Kind, amount, field = domain.OpBet, req.BetAmount, "BetAmount"
	case provider.MethodGameResult:
		op.Kind, amount, field = domain.OpWin, req.PayoutAmount, "PayoutAmount"
	case provider.MethodBonus:
		op.Kind, amount, field = domain.OpBonus, req.BonusAmount, "BonusAmount"
	case provider.MethodRollback:
		op.Kind = domain.OpRollback
		return op, nil
	default:
		return usecase.Operation{}, fmt.Errorf("%w: unsupported method %s", domain.ErrInvalidRequest, method)
	}

	parsed, err := provider.ParseAmount(amount)
	if err != nil {
		return usecase.Operation{}, fmt.Errorf("%w: %s: %v", domain.ErrInvalidRequest, field, err)
	}
	op.Amount = parsed

	return op, nil
}

const alreadyProcessed = "Transaction already processed"

var statuses = provider.StatusTable{
	OK: provider.Status{Code: 200, Message: "Success"},
	Rules: []provider.StatusRule{
		{Err: domain.ErrInvalidSignature, Status: provider.Status{Code: 900401, Message: "Invalid signature"}},
		{Err: domain.ErrDuplicateRequest, Status: provider.Status{Code: 200, Message: alreadyProcessed}},
		{Err: domain.ErrAccountNotFound, Status: provider.Status{Code: 900404, Message: "Player not found"}},
		{Err: domain.ErrAccountBanned, Status: provider.Status{Code: 900405, Message: "Player suspended"}},
		{Err: domain.ErrInsufficientFunds, Status: provider.Status{Code: 900409, Message: "Insufficient balance"}},
		{Err: domain.ErrNothingToRollback, Status: provider.Status{Code: 900410, Message: "Transaction not found"}},
		{Err: domain.ErrAlreadySettled, Status: provider.Status{Code: 900411, Message: "Bet already settled"}},
		{Err: domain.ErrBetNotFound, Status: provider.Status{Code: 900410, Message: "Bet not found"}},
		{Err: domain.ErrInvalidRequest, Status: provider.Status{Code: 900402, Message: "Bad request"}},
		{Err: domain.ErrStoreUnavailable, Status: provider.Status{Code: 900503, Message: "Service unavailable"}},
	},
	Fallback: provider.Status{Code: 900500, Message: "Internal error"},
}

// Encode implements provider.Adapter.
func (a *Adapter) Encode(_ provider.Method, outcome provider.Outcome) provider.Response {
	status := statuses.Lookup(outcome.Err)

	body := Response{
		Status:           status.Code,
		Description:      status.Message,
		ResponseDateTime: a.now().UTC().Format(dateTimeLayout),
		Balance:          provider.Amount(decimal.Zero),
	}

	if outcome.HasBalance {
		body.Balance = provider.Amount(outcome.Balance)
		body.BeforeBalance = provider.Amount(outcome.BalanceBefore)
	}

	return provider.Response{
		HTTPStatus: http.StatusOK,
		Code:       provider.CodeLabel(status.Code),
		Body:       body,
	}
}
