package postgres

import (
	"context"

	"github.com/iho/gowallet/internal/domain"
)

// SeamlessEventRepository stores raw provider callbacks. Writes happen outside
// the ledger transaction so rejected callbacks are kept too.
type SeamlessEventRepository struct {
	db DB
}

// NewSeamlessEventRepository creates a new SeamlessEventRepository.
func NewSeamlessEventRepository(db DB) *SeamlessEventRepository {
	return &SeamlessEventRepository{db: db}
}

// Create inserts the callback and fills in its id.
func (r *SeamlessEventRepository) Create(ctx context.Context, event *domain.SeamlessEvent) error {
	raw := event.RawData
	if len(raw) == 0 {
		raw = []byte("{}")
	}

	return r.db.QueryRow(ctx, `
		INSERT INTO seamless_events (provider, method, account_ref, game_type_id, game_ref, request_time, raw_data, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`,
		event.Provider,
		event.Method,
		event.AccountRef,
		event.GameTypeID,
		event.GameRef,
		event.RequestTime,
		[]byte(raw),
		event.CreatedAt,
	).Scan(&event.ID)
}
