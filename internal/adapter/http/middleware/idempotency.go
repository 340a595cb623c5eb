package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/gowallet/internal/usecase"
)

const (
	// IdempotencyKeyHeader is the header name for idempotency keys.
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotencyReplayHeader marks responses served from the store.
	IdempotencyReplayHeader = "X-Idempotency-Replay"
	// DefaultIdempotencyTTL is used when no TTL is configured.
	DefaultIdempotencyTTL = 24 * time.Hour
)

// storedResponse is what gets persisted for a completed request.
type storedResponse struct {
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body,omitempty"`
}

// IdempotencyMiddleware replays the first successful response of a
// mutating request that carries an Idempotency-Key header.
type IdempotencyMiddleware struct {
	store usecase.IdempotencyStore
	ttl   time.Duration
}

// NewIdempotencyMiddleware creates a new IdempotencyMiddleware.
func NewIdempotencyMiddleware(store usecase.IdempotencyStore, ttl time.Duration) *IdempotencyMiddleware {
	if ttl <= 0 {
		ttl = DefaultIdempotencyTTL
	}
	return &IdempotencyMiddleware{store: store, ttl: ttl}
}

// Wrap wraps an http.Handler with idempotency checking.
func (m *IdempotencyMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost && r.Method != http.MethodPut && r.Method != http.MethodPatch {
			next.ServeHTTP(w, r)
			return
		}

		key := r.Header.Get(IdempotencyKeyHeader)
		if key == "" {
			next.ServeHTTP(w, r)
			return
		}
		key = scopedKey(r, key)

		ctx := r.Context()
		log := zerolog.Ctx(ctx)

		exists, cached, err := m.store.CheckAndSet(ctx, key, nil, m.ttl)
		if err != nil {
			log.Error().Err(err).Str("idempotency_key", key).Msg("idempotency check failed")
			http.Error(w, "idempotency check failed", http.StatusInternalServerError)
			return
		}

		if exists {
			replay(w, cached)
			return
		}

		recorder := &responseRecorder{
			ResponseWriter: w,
			body:           &bytes.Buffer{},
			statusCode:     http.StatusOK,
		}
		next.ServeHTTP(recorder, r)

		if recorder.statusCode < 200 || recorder.statusCode >= 300 {
			if err := m.store.Release(ctx, key); err != nil {
				log.Warn().Err(err).Str("idempotency_key", key).Msg("failed to release idempotency key")
			}
			return
		}

		payload, err := json.Marshal(storedResponse{
			Status: recorder.statusCode,
			Body:   bytes.TrimSpace(recorder.body.Bytes()),
		})
		if err != nil {
			// non-JSON bodies are not replayable
			_ = m.store.Release(ctx, key)
			return
		}
		if err := m.store.Update(ctx, key, payload, m.ttl); err != nil {
			log.Warn().Err(err).Str("idempotency_key", key).Msg("failed to store idempotent response")
		}
	})
}

// replay writes a stored response. A key without a stored response is still
// in flight.
func replay(w http.ResponseWriter, cached []byte) {
	var stored storedResponse
	if len(cached) == 0 || json.Unmarshal(cached, &stored) != nil || stored.Status == 0 {
		http.Error(w, "request with this idempotency key is in progress", http.StatusConflict)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set(IdempotencyReplayHeader, "true")
	w.WriteHeader(stored.Status)
	_, _ = w.Write(stored.Body)
}

// scopedKey binds a client key to the caller and the route so that two
// operators cannot collide on the same key.
func scopedKey(r *http.Request, key string) string {
	subject := "anonymous"
	if user, ok := UserFromContext(r.Context()); ok {
		subject = user.ID
	}
	return subject + ":" + r.Method + ":" + r.URL.Path + ":" + key
}

type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *responseRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}
