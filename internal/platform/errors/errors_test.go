package errors

import (
	"context"
	stderrs "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestHTTPStatusCodeMapping(t *testing.T) {
	cases := []struct {
		code ErrorCode
		want int
	}{
		{ErrorCodeNotFound, http.StatusNotFound},
		{ErrorCodeInvalidArgument, http.StatusUnprocessableEntity},
		{ErrorCodeValidation, http.StatusBadRequest},
		{ErrorCodeJSON, http.StatusBadRequest},
		{ErrorCodeUnauthorized, http.StatusUnauthorized},
		{ErrorCodeTooManyRequests, http.StatusTooManyRequests},
		{ErrorCodeUnavailable, http.StatusServiceUnavailable},
		{ErrorCodeBusy, http.StatusConflict},
		{ErrorCodeTimeout, http.StatusGatewayTimeout},
		{ErrorCodeRequestFailed, http.StatusBadGateway},
		{ErrorCodeDownload, http.StatusBadGateway},
		{ErrorCodeSink, http.StatusBadGateway},
		{ErrorCodeDecode, http.StatusBadGateway},
		{ErrorCodeNoReference, http.StatusFailedDependency},
		{ErrorCodeDB, http.StatusInternalServerError},
		{ErrorCodePanic, http.StatusInternalServerError},
		{ErrorCodeUnknown, http.StatusInternalServerError},
		{9999, http.StatusInternalServerError}, // default branch
	}
	for _, c := range cases {
		if got := HTTPStatusCode(c.code); got != c.want {
			t.Fatalf("HTTPStatusCode(%v) = %d, want %d", c.code, got, c.want)
		}
	}
}

func TestCodeNames(t *testing.T) {
	if ErrorCodeNoReference.String() != "no_reference" {
		t.Fatalf("name = %q", ErrorCodeNoReference.String())
	}
	if got := ErrorCode(9999).String(); got != "code_9999" {
		t.Fatalf("fallback name = %q", got)
	}
}

func TestErrorTypeAndMethods(t *testing.T) {
	var e *Error
	if e.Error() != "<nil>" {
		t.Fatalf("nil *Error render = %q, want <nil>", e.Error())
	}

	e1 := New(ErrorCodeValidation, "bad stuff")
	if CodeOf(e1) != ErrorCodeValidation {
		t.Fatalf("CodeOf(New) = %v", CodeOf(e1))
	}
	e2 := Newf(ErrorCodeJSON, "bad json %d", 12)
	if got := e2.Error(); got != "bad json 12" {
		t.Fatalf("Newf().Error = %q", got)
	}

	src := stderrs.New("root")
	e3 := Wrap(src, ErrorCodeSink, "upload failed")
	if u := stderrs.Unwrap(e3); u == nil || u.Error() != "root" {
		t.Fatalf("Wrap did not keep orig")
	}
	if got := e3.Error(); got != "upload failed: root" {
		t.Fatalf("Wrap render = %q", got)
	}
	if Root(e3) != src {
		t.Fatalf("Root did not reach src")
	}

	e4 := WithOp(WithField(e3, "file"), "sink.upload")
	pe, ok := As(e4)
	if !ok || pe.Field() != "file" || pe.Op() != "sink.upload" {
		t.Fatalf("mutators lost data: %+v", pe)
	}
	// copy-on-write leaves the source alone
	if pe3, _ := As(e3); pe3.Field() != "" {
		t.Fatalf("WithField mutated source")
	}

	if WrapIf(nil, ErrorCodeDB, "x") != nil {
		t.Fatalf("WrapIf(nil) should be nil")
	}
}

func TestIsCodeWalksChain(t *testing.T) {
	inner := New(ErrorCodeTimeout, "exhausted")
	outer := Wrap(inner, ErrorCodeRequestFailed, "import")
	if !IsCode(outer, ErrorCodeTimeout) {
		t.Fatalf("IsCode should see inner timeout")
	}
	if !IsCode(outer, ErrorCodeRequestFailed) {
		t.Fatalf("IsCode should see outer code")
	}
	if CodeOf(outer) != ErrorCodeRequestFailed {
		t.Fatalf("CodeOf should report outermost")
	}
	if IsCode(fmt.Errorf("plain"), ErrorCodeUnknown) {
		t.Fatalf("foreign errors carry no code")
	}
}

func TestWireAndHTTP(t *testing.T) {
	if w := WireFrom(nil); w != (Wire{}) {
		t.Fatalf("WireFrom(nil) = %+v", w)
	}
	w := WireFrom(stderrs.New("boom"))
	if w.Code != ErrorCodeUnknown || w.Kind != "unknown" || w.Message != "boom" {
		t.Fatalf("foreign wire = %+v", w)
	}
	status, w2 := HTTP(Busyf("run %s active", "r1"))
	if status != http.StatusConflict || w2.Kind != "busy" || w2.Message != "run r1 active" {
		t.Fatalf("HTTP busy = %d %+v", status, w2)
	}
	if s, _ := HTTP(nil); s != http.StatusOK {
		t.Fatalf("HTTP(nil) = %d", s)
	}
}

func TestStatusCode(t *testing.T) {
	if StatusCode(401, ErrorCodeSink) != ErrorCodeUnauthorized {
		t.Fatal("401 should be unauthorized")
	}
	if StatusCode(429, ErrorCodeSink) != ErrorCodeTooManyRequests {
		t.Fatal("429 should be throttled")
	}
	if StatusCode(503, ErrorCodeSink) != ErrorCodeUnavailable {
		t.Fatal("503 should be unavailable")
	}
	if StatusCode(400, ErrorCodeSink) != ErrorCodeSink {
		t.Fatal("400 should use fallback")
	}
	if !RetryableStatus(500) || !RetryableStatus(429) || RetryableStatus(404) {
		t.Fatal("RetryableStatus mismatch")
	}
}

func TestRetryable(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"canceled", context.Canceled, false},
		{"deadline", fmt.Errorf("get: %w", context.DeadlineExceeded), true},
		{"unavailable", Unavailablef("down"), true},
		{"throttled", New(ErrorCodeTooManyRequests, "slow down"), true},
		{"sink reject", New(ErrorCodeSink, "400"), false},
		{"pg deadlock", Wrap(&pgconn.PgError{Code: "40P01"}, ErrorCodeDB, "tx"), true},
		{"pg unique", Wrap(&pgconn.PgError{Code: "23505"}, ErrorCodeDB, "tx"), false},
		{"reset", stderrs.New("read tcp: connection reset by peer"), true},
		{"other", stderrs.New("nope"), false},
	}
	for _, c := range cases {
		if got := Retryable(c.err); got != c.want {
			t.Fatalf("%s: Retryable = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestFromPostgres(t *testing.T) {
	if FromPostgres(nil, "x") != nil {
		t.Fatal("nil in, nil out")
	}
	if CodeOf(FromPostgres(&pgconn.PgError{Code: "57P03"}, "connect")) != ErrorCodeUnavailable {
		t.Fatal("57P03 should be unavailable")
	}
	if CodeOf(FromPostgres(stderrs.New("boom"), "q")) != ErrorCodeDB {
		t.Fatal("generic should be db")
	}
}
