package upstream

import (
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	perr "reportrelay/internal/platform/errors"
)

func header(ct string) http.Header { return http.Header{"Content-Type": {ct}} }

func TestContentTypes(t *testing.T) {
	if !IsJSON(header("Application/JSON; charset=utf-8")) || IsJSON(header("text/plain")) {
		t.Fatal("json detection")
	}
	for _, ct := range []string{"text/plain;charset=UTF-8", "text/tab-separated-values", "application/octet-stream", "text/xls"} {
		if !IsTabular(header(ct)) {
			t.Fatalf("%s should be tabular", ct)
		}
	}
	if IsTabular(header("text/html")) {
		t.Fatal("html is not tabular")
	}
	if mt := MediaType(http.Header{}); mt != "" {
		t.Fatalf("empty media type = %q", mt)
	}
}

func TestStatusPredicates(t *testing.T) {
	if !IsRedirect(302) || IsRedirect(200) {
		t.Fatal("redirect")
	}
	if !OK(204) || OK(301) {
		t.Fatal("ok")
	}
}

func TestStatusError(t *testing.T) {
	resp := &http.Response{StatusCode: 500, Body: io.NopCloser(strings.NewReader("  internal oops  "))}
	err := StatusError(resp, perr.ErrorCodeRequestFailed, "reportRequest NEW %d", 500)
	if !perr.IsCode(err, perr.ErrorCodeRequestFailed) || err.Error() != "reportRequest NEW 500: internal oops" {
		t.Fatalf("got %v", err)
	}

	resp = &http.Response{StatusCode: 403, Body: io.NopCloser(strings.NewReader(""))}
	err = StatusError(resp, perr.ErrorCodeDownload, "download %d", 403)
	if !perr.IsCode(err, perr.ErrorCodeUnauthorized) || err.Error() != "download 403" {
		t.Fatalf("got %v", err)
	}
}

func TestRetryAfter(t *testing.T) {
	if d := retryAfter(http.Header{"Retry-After": {"2"}}); d != 2*time.Second {
		t.Fatalf("retry after = %s", d)
	}
	if d := retryAfter(http.Header{"Retry-After": {"soon"}}); d != 0 {
		t.Fatalf("unparsable retry after = %s", d)
	}
	if d := retryAfter(http.Header{}); d != 0 {
		t.Fatalf("missing retry after = %s", d)
	}
}
