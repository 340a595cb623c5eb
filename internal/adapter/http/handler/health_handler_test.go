package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHealthHandler_Readiness(t *testing.T) {
	ok := PingerFunc(func(context.Context) error { return nil })
	down := PingerFunc(func(context.Context) error { return errors.New("connection refused") })

	tests := []struct {
		name     string
		checks   map[string]Pinger
		expected int
	}{
		{"no dependencies", nil, http.StatusOK},
		{"all healthy", map[string]Pinger{"postgres": ok, "redis": ok}, http.StatusOK},
		{"nil check skipped", map[string]Pinger{"postgres": ok, "redis": nil}, http.StatusOK},
		{"redis down", map[string]Pinger{"postgres": ok, "redis": down}, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			NewHealthHandler(tt.checks).Readiness(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

			if rec.Code != tt.expected {
				t.Fatalf("expected %d, got %d", tt.expected, rec.Code)
			}

			var body map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("failed to decode: %v", err)
			}
			if tt.expected == http.StatusServiceUnavailable && body["redis"] != "connection refused" {
				t.Fatalf("expected redis error in body, got %v", body)
			}
		})
	}
}

func TestHealthHandler_Liveness(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHealthHandler(nil).Liveness(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
