package domain

import (
	"encoding/json"
	"time"
)

// SeamlessEvent is the raw record of one inbound provider callback.
type SeamlessEvent struct {
	ID          int64
	Provider    string
	Method      string
	AccountRef  string
	GameTypeID  string
	GameRef     string
	RequestTime *time.Time
	RawData     json.RawMessage
	CreatedAt   time.Time
}
