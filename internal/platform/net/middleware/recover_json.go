package middleware

import (
	stdhttp "net/http"
	"runtime/debug"

	perr "reportrelay/internal/platform/errors"
	"reportrelay/internal/platform/logger"
	pnet "reportrelay/internal/platform/net"
	phttp "reportrelay/internal/platform/net/http"
)

// RecoverJSON converts panics into the standard JSON error envelope and logs the stack
func RecoverJSON(next stdhttp.Handler) stdhttp.Handler {
	return stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		defer func() {
			v := recover()
			if v == nil || v == stdhttp.ErrAbortHandler {
				if v != nil {
					panic(v)
				}
				return
			}
			reqID := pnet.RequestID(r.Context())
			logger.C(r.Context()).Error().
				Interface("panic", v).
				Bytes("stack", debug.Stack()).
				Msg("panic recovered")

			if reqID != "" {
				w.Header().Set("X-Request-ID", reqID)
			}
			status, env := phttp.ErrorEnvelope(perr.PanicErrf("panic recovered"), reqID)
			phttp.JSON(w, status, env)
		}()
		next.ServeHTTP(w, r)
	})
}
