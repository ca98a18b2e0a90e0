package upstream

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	perr "reportrelay/internal/platform/errors"
	pstrings "reportrelay/internal/platform/strings"
)

// DrainAndClose discards a bounded tail so the connection can be reused
func DrainAndClose(rc io.ReadCloser) error {
	_, _ = io.Copy(io.Discard, io.LimitReader(rc, 512))
	return rc.Close()
}

// ReadAll reads at most limit bytes of body and closes it
func ReadAll(rc io.ReadCloser, limit int64) (string, error) {
	defer rc.Close()
	b, err := io.ReadAll(io.LimitReader(rc, limit))
	return string(b), err
}

// MediaType returns the lower cased media type of a response, without parameters
func MediaType(h http.Header) string {
	ct := strings.ToLower(strings.TrimSpace(h.Get("Content-Type")))
	if ct == "" {
		return ""
	}
	if mt, _, err := mime.ParseMediaType(ct); err == nil {
		return mt
	}
	return ct
}

// IsJSON reports a JSON content type
func IsJSON(h http.Header) bool {
	return strings.Contains(MediaType(h), "application/json")
}

// IsTabular reports a content type that carries raw report text
func IsTabular(h http.Header) bool {
	mt := MediaType(h)
	for _, s := range []string{"text/plain", "text/tab-separated-values", "octet-stream", "text/xls"} {
		if strings.Contains(mt, s) {
			return true
		}
	}
	return false
}

// IsRedirect reports a 3xx status
func IsRedirect(status int) bool { return status >= 300 && status < 400 }

// OK reports a 2xx status
func OK(status int) bool { return status >= 200 && status < 300 }

// StatusError turns a failed response into a structured error and closes the body
// auth, throttling and outage statuses keep their own codes; everything else gets fallback
func StatusError(resp *http.Response, fallback perr.ErrorCode, format string, a ...any) error {
	text, _ := ReadAll(resp.Body, 2048)
	msg := fmt.Sprintf(format, a...)
	if s := pstrings.Snippet(text, SnippetLen); s != "" {
		msg += ": " + s
	}
	return perr.New(perr.StatusCode(resp.StatusCode, fallback), msg)
}

// retryAfter parses a Retry-After header in seconds
func retryAfter(h http.Header) time.Duration {
	v := strings.TrimSpace(h.Get("Retry-After"))
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0
	}
	return time.Duration(n) * time.Second
}
