package middleware

import (
	"net/http"

	"golang.org/x/time/rate"
)

// RateLimit throttles the daemon API with one shared limiter. The API
// fronts a handful of operator tools, not tenants, so per-caller limiters
// are not needed. rps <= 0 means unlimited.
func RateLimit(rps float64) func(http.Handler) http.Handler {
	var limiter *rate.Limiter
	if rps > 0 {
		limiter = rate.NewLimiter(rate.Limit(rps), int(rps)+1)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter != nil && !limiter.Allow() {
				w.Header().Set("Retry-After", "1")
				http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
