// Package middleware provides thin adapters over chi middleware without leaking chi types
package middleware

import (
	"net/http"
	"time"

	pstrings "reportrelay/internal/platform/strings"

	chimw "github.com/go-chi/chi/v5/middleware"
	chicors "github.com/go-chi/cors"
)

// RequestID attaches or propagates X-Request-ID and stores it on context
func RequestID() func(http.Handler) http.Handler { return chimw.RequestID }

// RealIP sets RemoteAddr to the upstream IP based on X-Forwarded-For headers
func RealIP() func(http.Handler) http.Handler { return chimw.RealIP }

// Timeout cancels the request context after d
func Timeout(d time.Duration) func(http.Handler) http.Handler { return chimw.Timeout(d) }

// NoCache sets headers to disable client and proxy caching
func NoCache() func(http.Handler) http.Handler { return chimw.NoCache }

// Heartbeat replies with 200 OK to GET path, useful for LB health checks
func Heartbeat(path string) func(http.Handler) http.Handler { return chimw.Heartbeat(path) }

// StripSlashes strips a trailing slash from the request path
func StripSlashes() func(http.Handler) http.Handler { return chimw.StripSlashes }

// CORSOptions is a narrow surface over go-chi/cors
type CORSOptions struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	MaxAge         int
}

// CORS wraps go-chi/cors with defaults suited to a local control panel
func CORS(o CORSOptions) func(http.Handler) http.Handler {
	return chicors.Handler(chicors.Options{
		AllowedOrigins: pstrings.IfEmpty(o.AllowedOrigins, []string{"http://localhost:*", "http://127.0.0.1:*"}),
		AllowedMethods: pstrings.IfEmpty(o.AllowedMethods, []string{"GET", "POST", "PUT", "OPTIONS"}),
		AllowedHeaders: pstrings.IfEmpty(
			o.AllowedHeaders,
			[]string{
				"Accept",
				"Authorization",
				"Content-Type",
				"X-Request-ID",
			},
		),
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         o.MaxAge,
	})
}

// StackOptions selects the knobs of the baseline control API stack
type StackOptions struct {
	CORS      CORSOptions
	SlowLog   time.Duration
	RateRPS   float64
	RateBurst int
	Token     string
	Timeout   time.Duration
}

// Stack returns the baseline middleware in mount order
func Stack(o StackOptions) []func(http.Handler) http.Handler {
	mw := []func(http.Handler) http.Handler{
		RealIP(),
		RequestID(),
		RecoverJSON,
		NoCache(),
		AccessLogZerolog(AccessLogOptions{Slow: o.SlowLog}),
		CORS(o.CORS),
		StripSlashes(),
	}
	if o.RateRPS > 0 {
		mw = append(mw, RateLimit(NewLimiter(o.RateRPS, o.RateBurst)))
	}
	if o.Token != "" {
		mw = append(mw, TokenAuth(o.Token))
	}
	if o.Timeout > 0 {
		mw = append(mw, Timeout(o.Timeout))
	}
	return mw
}
