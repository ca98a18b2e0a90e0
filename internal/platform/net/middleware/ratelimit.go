package middleware

import (
	"net/http"
	"strconv"

	perr "reportrelay/internal/platform/errors"
	phttp "reportrelay/internal/platform/net/http"

	"golang.org/x/time/rate"
)

// NewLimiter builds a token bucket; burst falls back to twice the rate
func NewLimiter(rps float64, burst int) *rate.Limiter {
	if burst <= 0 {
		burst = max(int(rps*2), 1)
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

// RateLimit rejects requests once the shared bucket is empty
// the control API is single-tenant so one bucket covers every caller
func RateLimit(l *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if l != nil && !l.Allow() {
				w.Header().Set("Retry-After", strconv.Itoa(1))
				phttp.WriteError(w, r, perr.New(perr.ErrorCodeTooManyRequests, "rate limit exceeded"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
