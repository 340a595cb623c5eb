// Package provider connects seamless game provider callbacks to the wallet
// engine. Each provider lives in its own subpackage implementing Adapter.
package provider

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gowallet/internal/usecase"
)

// Method is a canonical callback method, shared by every provider.
type Method string

const (
	MethodGetBalance  Method = "GetBalance"
	MethodPlaceBet    Method = "PlaceBet"
	MethodGameResult  Method = "GameResult"
	MethodRollback    Method = "Rollback"
	MethodCancelBet   Method = "CancelBet"
	MethodBuyIn       Method = "BuyIn"
	MethodBuyOut      Method = "BuyOut"
	MethodPushBet     Method = "PushBet"
	MethodBonus       Method = "Bonus"
	MethodJackpot     Method = "Jackpot"
	MethodMobileLogin Method = "MobileLogin"
)

// Mutates reports whether calls of m change a balance.
func (m Method) Mutates() bool {
	switch m {
	case MethodGetBalance, MethodPushBet, MethodMobileLogin:
		return false
	default:
		return true
	}
}

// Call is a verified, decoded provider callback.
type Call struct {
	Method      Method
	AccountRef  string
	GameTypeID  string
	GameRef     string
	RequestTime *time.Time
	Operations  []usecase.Operation
	Raw         json.RawMessage
}

// Outcome is what the engine made of a call.
type Outcome struct {
	Balance       decimal.Decimal
	BalanceBefore decimal.Decimal
	HasBalance    bool
	Err           error
}

// Response is an encoded provider reply. Code is the provider status code,
// used as a metrics label.
type Response struct {
	HTTPStatus int
	Code       string
	Body       any
}

// Adapter translates one provider's wire format to and from canonical calls.
type Adapter interface {
	Name() string
	// Routes maps a path segment to the canonical method it serves.
	Routes() map[string]Method
	// Decode verifies the signature and parses the body.
	Decode(method Method, header http.Header, body []byte) (*Call, error)
	Encode(method Method, outcome Outcome) Response
}

// Amount formats a balance for a JSON body without quoting it.
func Amount(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

// ParseAmount parses a JSON number into a decimal. An empty value is zero.
func ParseAmount(n json.Number) (decimal.Decimal, error) {
	if n == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(string(n))
}
