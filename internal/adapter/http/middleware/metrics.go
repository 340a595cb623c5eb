package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// HTTPMetrics records request level metrics.
type HTTPMetrics interface {
	RecordHTTPRequest(method, path string, status int, duration time.Duration)
	InFlight(delta float64)
}

// Metrics returns a middleware that records request counts, latency and
// in-flight requests. Paths are labelled with the matched chi route pattern
// to keep label cardinality bounded.
func Metrics(recorder HTTPMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			recorder.InFlight(1)
			defer recorder.InFlight(-1)

			wrapped := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			recorder.RecordHTTPRequest(r.Method, routePattern(r), wrapped.statusCode, time.Since(start))
		})
	}
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}
