package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"reportrelay/internal/platform/logger"
	pnet "reportrelay/internal/platform/net"
)

// AccessLogOptions configures the access log
type AccessLogOptions struct {
	// Slow logs requests at or above it as warn, 0 disables
	Slow time.Duration
}

type captureWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (cw *captureWriter) WriteHeader(code int) {
	cw.status = code
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
	n, err := cw.ResponseWriter.Write(b)
	cw.bytes += n
	return n, err
}

// AccessLogZerolog logs one line per request and puts the request id on the context logger
// server errors log at error, slow requests at warn
func AccessLogZerolog(opt AccessLogOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := logger.WithRequest(r.Context(), pnet.RequestID(r.Context()))
			r = r.WithContext(ctx)

			cw := &captureWriter{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(cw, r)
			elapsed := time.Since(start)

			log := logger.C(ctx)
			var evt *zerolog.Event
			switch {
			case cw.status >= 500:
				evt = log.Error()
			case opt.Slow > 0 && elapsed >= opt.Slow:
				evt = log.Warn().Bool("slow", true)
			default:
				evt = log.Info()
			}
			evt.Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("route", routePattern(r)).
				Int("status", cw.status).
				Int("bytes", cw.bytes).
				Dur("elapsed", elapsed).
				Msg("request done")
		})
	}
}

// routePattern is the matched chi pattern, empty outside a chi router
func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		return rc.RoutePattern()
	}
	return ""
}
