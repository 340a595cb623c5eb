package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitRecorder counts rejected requests.
type RateLimitRecorder interface {
	RecordRateLimited(limiter string)
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter implements per-IP rate limiting
type RateLimiter struct {
	name     string
	limiters map[string]*clientLimiter
	mu       sync.Mutex
	rate     rate.Limit
	burst    int
	metrics  RateLimitRecorder
	now      func() time.Time
}

// NewRateLimiter creates a new rate limiter
// rate: requests per second
// burst: max burst size
func NewRateLimiter(name string, r float64, b int, metrics RateLimitRecorder) *RateLimiter {
	return &RateLimiter{
		name:     name,
		limiters: make(map[string]*clientLimiter),
		rate:     rate.Limit(r),
		burst:    b,
		metrics:  metrics,
		now:      time.Now,
	}
}

// getLimiter returns a rate limiter for the given IP
func (rl *RateLimiter) getLimiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cl, ok := rl.limiters[ip]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.limiters[ip] = cl
	}
	cl.lastSeen = rl.now()

	return cl.limiter
}

// Limit is a middleware that enforces rate limiting per IP
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.getLimiter(getIP(r)).Allow() {
			if rl.metrics != nil {
				rl.metrics.RecordRateLimited(rl.name)
			}
			writeJSONError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// getIP extracts the client IP from the request. chi's RealIP middleware
// has already folded proxy headers into RemoteAddr when it runs first.
func getIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// CleanupLimiters drops limiters idle for longer than maxIdle.
func (rl *RateLimiter) CleanupLimiters(maxIdle time.Duration) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-maxIdle)
	removed := 0
	for ip, cl := range rl.limiters {
		if cl.lastSeen.Before(cutoff) {
			delete(rl.limiters, ip)
			removed++
		}
	}
	return removed
}

// Size returns the number of tracked clients.
func (rl *RateLimiter) Size() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limiters)
}
