// Package gsc implements the GSC seamless wallet callbacks.
package gsc

import (
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gowallet/internal/adapter/provider"
	"github.com/iho/gowallet/internal/domain"
	"github.com/iho/gowallet/internal/usecase"
)

// Name identifies the provider in routes, logs and metrics.
const Name = "gsc"

// requestTimeLayout is the RequestTime format GSC signs.
const requestTimeLayout = "20060102150405"

// Config holds the operator credentials issued by GSC.
type Config struct {
	OperatorCode string
	SecretKey    string
}

// Adapter implements provider.Adapter for GSC.
type Adapter struct {
	cfg Config
}

// New creates a GSC adapter.
func New(cfg Config) *Adapter {
	return &Adapter{cfg: cfg}
}

var routes = map[string]provider.Method{
	"GetBalance":  provider.MethodGetBalance,
	"PlaceBet":    provider.MethodPlaceBet,
	"GameResult":  provider.MethodGameResult,
	"Rollback":    provider.MethodRollback,
	"CancelBet":   provider.MethodCancelBet,
	"BuyIn":       provider.MethodBuyIn,
	"BuyOut":      provider.MethodBuyOut,
	"PushBet":     provider.MethodPushBet,
	"Bonus":       provider.MethodBonus,
	"Jackpot":     provider.MethodJackpot,
	"MobileLogin": provider.MethodMobileLogin,
}

var kinds = map[provider.Method]domain.OpKind{
	provider.MethodPlaceBet:   domain.OpBet,
	provider.MethodGameResult: domain.OpWin,
	provider.MethodRollback:   domain.OpRollback,
	provider.MethodCancelBet:  domain.OpCancel,
	provider.MethodBuyIn:      domain.OpBuyIn,
	provider.MethodBuyOut:     domain.OpBuyOut,
	provider.MethodBonus:      domain.OpBonus,
	provider.MethodJackpot:    domain.OpJackpot,
}

// Name implements provider.Adapter.
func (a *Adapter) Name() string { return Name }

// Routes implements provider.Adapter.
func (a *Adapter) Routes() map[string]provider.Method { return routes }

// Request is the body of every GSC callback.
type Request struct {
	OperatorCode string        `json:"OperatorCode"`
	MemberName   string        `json:"MemberName"`
	ProductID    int           `json:"ProductID"`
	MessageID    string        `json:"MessageID"`
	RequestTime  string        `json:"RequestTime"`
	Sign         string        `json:"Sign"`
	Transactions []Transaction `json:"Transactions"`
}

// Transaction is one item of a callback batch.
type Transaction struct {
	MemberName        string      `json:"MemberName"`
	TransactionID     string      `json:"TransactionID"`
	WagerID           string      `json:"WagerID"`
	GameType          int         `json:"GameType"`
	GameCode          string      `json:"GameCode"`
	GameRoundID       string      `json:"GameRoundID"`
	TransactionAmount json.Number `json:"TransactionAmount"`
	BetAmount         json.Number `json:"BetAmount"`
	PayoutAmount      json.Number `json:"PayoutAmount"`
}

// Response is the body of every GSC reply.
type Response struct {
	ErrorCode     int         `json:"ErrorCode"`
	ErrorMessage  string      `json:"ErrorMessage"`
	Balance       json.Number `json:"Balance"`
	BeforeBalance json.Number `json:"BeforeBalance"`
}

// Sign computes md5(OperatorCode + RequestTime + lower(method) + SecretKey).
func Sign(operatorCode, requestTime, method, secretKey string) string {
	sum := md5.Sum([]byte(operatorCode + requestTime + strings.ToLower(method) + secretKey))
	return hex.EncodeToString(sum[:])
}

// Decode implements provider.Adapter.
func (a *Adapter) Decode(method provider.Method, _ http.Header, body []byte) (*provider.Call, error) {
	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, fmt.Errorf("%w: malformed body: %v", domain.ErrInvalidRequest, err)
	}

	if req.OperatorCode != a.cfg.OperatorCode {
		return nil, fmt.Errorf("%w: unknown operator code", domain.ErrInvalidSignature)
	}

	want := Sign(req.OperatorCode, req.RequestTime, string(method), a.cfg.SecretKey)
	if subtle.ConstantTimeCompare([]byte(want), []byte(strings.ToLower(req.Sign))) != 1 {
		return nil, domain.ErrInvalidSignature
	}

	if req.MemberName == "" {
		return nil, fmt.Errorf("%w: MemberName is required", domain.ErrInvalidRequest)
	}

	call := &provider.Call{
		Method:     method,
		AccountRef: req.MemberName,
		Raw:        json.RawMessage(body),
	}

	if t, err := time.Parse(requestTimeLayout, req.RequestTime); err == nil {
		call.RequestTime = &t
	}

	if len(req.Transactions) > 0 {
		first := req.Transactions[0]
		call.GameTypeID = strconv.Itoa(first.GameType)
		call.GameRef = gameRef(first)
	}

	kind, mutating := kinds[method]
	if !mutating {
		return call, nil
	}

	if len(req.Transactions) == 0 {
		return nil, fmt.Errorf("%w: Transactions is empty", domain.ErrInvalidRequest)
	}

	for _, txn := range req.Transactions {
		op, err := a.operation(req, txn, kind)
		if err != nil {
			return nil, err
		}
		call.Operations = append(call.Operations, op)
	}

	return call, nil
}

func (a *Adapter) operation(req Request, txn Transaction, kind domain.OpKind) (usecase.Operation, error) {
	if txn.TransactionID == "" {
		return usecase.Operation{}, fmt.Errorf("%w: TransactionID is required", domain.ErrInvalidRequest)
	}

	member := txn.MemberName
	if member == "" {
		member = req.MemberName
	}
	if member != req.MemberName {
		return usecase.Operation{}, fmt.Errorf("%w: transaction %s belongs to another member", domain.ErrInvalidRequest, txn.TransactionID)
	}

	op := usecase.Operation{
		Kind:           kind,
		AccountRef:     member,
		ExternalTxnRef: txn.TransactionID,
		BetRef:         txn.WagerID,
		GameRef:        gameRef(txn),
		Metadata: map[string]any{
			"product_id": req.ProductID,
			"game_type":  txn.GameType,
			"message_id": req.MessageID,
		},
	}

	if kind.IsReversal() {
		return op, nil
	}

	amount, err := provider.ParseAmount(txn.TransactionAmount)
	if err != nil {
		return usecase.Operation{}, fmt.Errorf("%w: TransactionAmount: %v", domain.ErrInvalidRequest, err)
	}

	// GSC signs debits negative
	op.Amount = amount.Abs()

	return op, nil
}

func gameRef(txn Transaction) string {
	if txn.GameRoundID != "" {
		return txn.GameRoundID
	}
	return txn.GameCode
}

var statuses = provider.StatusTable{
	OK: provider.Status{Code: 0, Message: ""},
	Rules: []provider.StatusRule{
		{Err: domain.ErrInvalidSignature, Status: provider.Status{Code: 1004, Message: "InvalidSignature"}},
		{Err: domain.ErrDuplicateRequest, Status: provider.Status{Code: 1003, Message: "DuplicateTransaction"}},
		{Err: domain.ErrAccountNotFound, Status: provider.Status{Code: 1000, Message: "MemberNotExist"}},
		{Err: domain.ErrAccountBanned, Status: provider.Status{Code: 1008, Message: "MemberBanned"}},
		{Err: domain.ErrInsufficientFunds, Status: provider.Status{Code: 1001, Message: "InsufficientBalance"}},
		{Err: domain.ErrNothingToRollback, Status: provider.Status{Code: 1005, Message: "TransactionNotFound"}},
		{Err: domain.ErrAlreadySettled, Status: provider.Status{Code: 1007, Message: "AlreadySettled"}},
		{Err: domain.ErrBetNotFound, Status: provider.Status{Code: 1005, Message: "TransactionNotFound"}},
		{Err: domain.ErrInvalidRequest, Status: provider.Status{Code: 1006, Message: "BadParameters"}},
		{Err: domain.ErrStoreUnavailable, Status: provider.Status{Code: 1009, Message: "ServiceUnavailable"}},
	},
	Fallback: provider.Status{Code: 999, Message: "InternalServerError"},
}

// Encode implements provider.Adapter. GSC always replies 200.
func (a *Adapter) Encode(_ provider.Method, outcome provider.Outcome) provider.Response {
	status := statuses.Lookup(outcome.Err)

	body := Response{
		ErrorCode:    status.Code,
		ErrorMessage: status.Message,
		Balance:      provider.Amount(decimal.Zero),
	}
	body.BeforeBalance = body.Balance

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
