package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	perr "reportrelay/internal/platform/errors"
	pnet "reportrelay/internal/platform/net"
	phttp "reportrelay/internal/platform/net/http"
)

// TokenAuth requires "Authorization: Bearer <token>" on every request
// a blank token disables the check
func TokenAuth(token string) func(http.Handler) http.Handler {
	want := []byte(strings.TrimSpace(token))
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(want) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || subtle.ConstantTimeCompare([]byte(strings.TrimSpace(got)), want) != 1 {
				phttp.WriteError(w, r, perr.Unauthorizedf("missing or invalid bearer token"))
				return
			}
			next.ServeHTTP(w, r.WithContext(pnet.WithCaller(r.Context(), "api")))
		})
	}
}
