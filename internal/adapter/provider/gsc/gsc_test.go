package gsc

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/gowallet/internal/adapter/provider"
	"github.com/iho/gowallet/internal/domain"
)

const (
	testOperator    = "OP1"
	testSecret      = "s3cret"
	testRequestTime = "20240302104247"
)

func TestSign(t *testing.T) {
	tests := []struct {
		method string
		want   string
	}{
		{"PlaceBet", "2db41a47eaf04cb13db3ac65c5cc9ffd"},
		{"placebet", "2db41a47eaf04cb13db3ac65c5cc9ffd"},
		{"GetBalance", "df0973984793bbdcb7d25cbb3c689344"},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			assert.Equal(t, tt.want, Sign(testOperator, testRequestTime, tt.method, testSecret))
		})
	}
}

func signedBody(t *testing.T, method string, mutate func(*Request)) []byte {
	t.Helper()

	req := Request{
		OperatorCode: testOperator,
		MemberName:   "player1",
		ProductID:    7,
		MessageID:    "m-1",
		RequestTime:  testRequestTime,
		Sign:         Sign(testOperator, testRequestTime, method, testSecret),
		Transactions: []Transaction{{
			TransactionID:     "T1",
			WagerID:           "W-1",
			GameType:          2,
			GameCode:          "slot-1",
			GameRoundID:       "R-9",
			TransactionAmount: "-12.50",
		}},
	}
	if mutate != nil {
		mutate(&req)
	}

	body, err := json.Marshal(req)
	require.NoError(t, err)
	return body
}

func TestDecode_PlaceBet(t *testing.T) {
	a := New(Config{OperatorCode: testOperator, SecretKey: testSecret})

	call, err := a.Decode(provider.MethodPlaceBet, http.Header{}, signedBody(t, "PlaceBet", nil))
	require.NoError(t, err)

	assert.Equal(t, "player1", call.AccountRef)
	assert.Equal(t, "2", call.GameTypeID)
	assert.Equal(t, "R-9", call.GameRef)
	require.NotNil(t, call.RequestTime)
	assert.Equal(t, 2024, call.RequestTime.Year())

	require.Len(t, call.Operations, 1)
	op := call.Operations[0]
	assert.Equal(t, domain.OpBet, op.Kind)
	assert.Equal(t, "T1", op.ExternalTxnRef)
	assert.Equal(t, "W-1", op.BetRef)
	assert.True(t, op.Amount.Equal(decimal.RequireFromString("12.5")), op.Amount.String())
}

func TestDecode_GetBalanceNeedsNoTransactions(t *testing.T) {
	a := New(Config{OperatorCode: testOperator, SecretKey: testSecret})

	body := signedBody(t, "GetBalance", func(r *Request) { r.Transactions = nil })
	call, err := a.Decode(provider.MethodGetBalance, http.Header{}, body)
	require.NoError(t, err)
	assert.Empty(t, call.Operations)
}

func TestDecode_AcceptsUppercaseSign(t *testing.T) {
	a := New(Config{OperatorCode: testOperator, SecretKey: testSecret})

	body := signedBody(t, "PlaceBet", func(r *Request) { r.Sign = strings.ToUpper(r.Sign) })
	_, err := a.Decode(provider.MethodPlaceBet, http.Header{}, body)
	assert.NoError(t, err)
}

func TestDecode_Rejects(t *testing.T) {
	a := New(Config{OperatorCode: testOperator, SecretKey: testSecret})

	tests := []struct {
		name    string
		body    []byte
		wantErr error
	}{
		{"malformed body", []byte("{"), domain.ErrInvalidRequest},
		{"unknown operator", signedBody(t, "PlaceBet", func(r *Request) { r.OperatorCode = "OP2" }), domain.ErrInvalidSignature},
		{"tampered sign", signedBody(t, "PlaceBet", func(r *Request) { r.Sign = "2db41a47eaf04cb13db3ac65c5cc9ffe" }), domain.ErrInvalidSignature},
		{"signed for another method", signedBody(t, "GameResult", nil), domain.ErrInvalidSignature},
		{"missing member", signedBody(t, "PlaceBet", func(r *Request) { r.MemberName = "" }), domain.ErrInvalidRequest},
		{"empty batch", signedBody(t, "PlaceBet", func(r *Request) { r.Transactions = nil }), domain.ErrInvalidRequest},
		{"missing transaction id", signedBody(t, "PlaceBet", func(r *Request) { r.Transactions[0].TransactionID = "" }), domain.ErrInvalidRequest},
		{"foreign member", signedBody(t, "PlaceBet", func(r *Request) { r.Transactions[0].MemberName = "player2" }), domain.ErrInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.Decode(provider.MethodPlaceBet, http.Header{}, tt.body)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestEncode(t *testing.T) {
	a := New(Config{OperatorCode: testOperator, SecretKey: testSecret})

	tests := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{"ok", nil, 0, ""},
		{"duplicate", &domain.DuplicateRequestError{}, 1003, "DuplicateTransaction"},
		{"insufficient", domain.ErrInsufficientFunds, 1001, "InsufficientBalance"},
		{"orphan settlement", fmt.Errorf("%w: W-1", domain.ErrBetNotFound), 1005, "TransactionNotFound"},
		{"reference of another member", fmt.Errorf("%w: reference T1 belongs to another account", domain.ErrInvalidRequest), 1006, "BadParameters"},
		{"unexpected", errors.New("boom"), 999, "InternalServerError"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := a.Encode(provider.MethodPlaceBet, provider.Outcome{
				Balance:       decimal.RequireFromString("87.5"),
				BalanceBefore: decimal.NewFromInt(100),
				HasBalance:    true,
				Err:           tt.err,
			})

			assert.Equal(t, http.StatusOK, resp.HTTPStatus)
			assert.Equal(t, fmt.Sprint(tt.code), resp.Code)

			body, ok := resp.Body.(Response)
			require.True(t, ok)
			assert.Equal(t, tt.code, body.ErrorCode)
			assert.Equal(t, tt.message, body.ErrorMessage)
			assert.Equal(t, json.Number("87.5"), body.Balance)
			assert.Equal(t, json.Number("100"), body.BeforeBalance)
		})
	}
}

func TestEncode_WithoutBalance(t *testing.T) {
	resp := New(Config{}).Encode(provider.MethodGetBalance, provider.Outcome{Err: domain.ErrAccountNotFound})

	body := resp.Body.(Response)
	assert.Equal(t, 1000, body.ErrorCode)
	assert.Equal(t, json.Number("0"), body.Balance)
	assert.Equal(t, json.Number("0"), body.BeforeBalance)
}
