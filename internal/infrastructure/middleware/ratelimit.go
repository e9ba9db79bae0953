package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/damon-houk/quickrate/internal/infrastructure/logger"
	"golang.org/x/time/rate"
)

// RateLimitMiddleware rejects requests with 429 once the shared token bucket is empty.
// The provider enforces a daily call quota per auth key, so one limiter guards the whole server.
func RateLimitMiddleware(limiter *rate.Limiter, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter.Allow() {
				next.ServeHTTP(w, r)
				return
			}

			requestID := GetRequestID(r.Context())
			log.Warn("Rate limit exceeded", map[string]interface{}{
				"request_id":  requestID,
				"remote_addr": r.RemoteAddr,
				"path":        r.URL.Path,
			})

			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"error":      "Too many requests",
				"status":     http.StatusTooManyRequests,
				"request_id": requestID,
			})
		})
	}
}

// NewLimiter builds the token bucket used by RateLimitMiddleware
func NewLimiter(requestsPerSecond float64, burst int) *rate.Limiter {
	return rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
}
