package handler

import (
	"context"
	"net/http"
	"time"
)

// Pinger is a dependency that can report its health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingerFunc adapts a function to Pinger.
type PingerFunc func(ctx context.Context) error

// Ping calls f.
func (f PingerFunc) Ping(ctx context.Context) error { return f(ctx) }

// HealthHandler handles health check requests.
type HealthHandler struct {
	checks map[string]Pinger
}

// NewHealthHandler creates a new HealthHandler. Nil checks are skipped.
func NewHealthHandler(checks map[string]Pinger) *HealthHandler {
	active := make(map[string]Pinger, len(checks))
	for name, p := range checks {
		if p != nil {
			active[name] = p
		}
	}
	return &HealthHandler{checks: active}
}

// Liveness returns 200 if the service is alive.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readiness returns 200 if every dependency answers.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := map[string]string{"status": "ready"}
	code := http.StatusOK
	for name, p := range h.checks {
		if err := p.Ping(ctx); err != nil {
			status[name] = err.Error()
			status["status"] = "unavailable"
			code = http.StatusServiceUnavailable
			continue
		}
		status[name] = "ok"
	}

	writeJSON(w, code, status)
}
