package http_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	perr "reportrelay/internal/platform/errors"
	phttp "reportrelay/internal/platform/net/http"

	"github.com/go-chi/chi/v5"
)

type scheduleIn struct {
	Enabled       *bool `json:"enabled"`
	IntervalHours int   `json:"interval_hours" validate:"omitempty,min=1,max=24"`
}

func newRouter() (*chi.Mux, phttp.Router) {
	m := chi.NewRouter()
	return m, phttp.AdaptChi(m)
}

func TestPostJSON_EmptyBodyBindsZero(t *testing.T) {
	m, r := newRouter()
	var got scheduleIn
	phttp.PostJSON(r, "/s", func(_ *http.Request, in scheduleIn) (any, error) {
		got = in
		return "ok", nil
	})
	rr := httptest.NewRecorder()
	m.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/s", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d body=%s", rr.Code, rr.Body.String())
	}
	if got.Enabled != nil || got.IntervalHours != 0 {
		t.Fatalf("expected zero value, got %+v", got)
	}
}

func TestPostJSON_UnknownFieldRejected(t *testing.T) {
	m, r := newRouter()
	phttp.PostJSON(r, "/s", func(*http.Request, scheduleIn) (any, error) { return nil, nil })
	rr := httptest.NewRecorder()
	m.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/s", strings.NewReader(`{"bogus":1}`)))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rr.Code)
	}
}

func TestPutJSON_RequiresBodyAndValidates(t *testing.T) {
	m, r := newRouter()
	phttp.PutJSON(r, "/s", func(_ *http.Request, in scheduleIn) (any, error) { return in, nil })

	rr := httptest.NewRecorder()
	m.ServeHTTP(rr, httptest.NewRequest(http.MethodPut, "/s", nil))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("empty put: expected 400 got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	m.ServeHTTP(rr, httptest.NewRequest(http.MethodPut, "/s", strings.NewReader(`{"interval_hours":48}`)))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("out of range: expected 400 got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	m.ServeHTTP(rr, httptest.NewRequest(http.MethodPut, "/s", strings.NewReader(`{"interval_hours":6}`)))
	if rr.Code != http.StatusOK {
		t.Fatalf("valid: expected 200 got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestGetJSON_ErrorAndResponsePassthrough(t *testing.T) {
	m, r := newRouter()
	phttp.GetJSON(r, "/err", func(*http.Request) (any, error) {
		return nil, perr.Wrap(errors.New("eof"), perr.ErrorCodeDownload, "download 503")
	})
	phttp.GetJSON(r, "/accepted", func(*http.Request) (any, error) {
		return phttp.Accepted("later"), nil
	})

	rr := httptest.NewRecorder()
	m.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/err", nil))
	if rr.Code != http.StatusBadGateway {
		t.Fatalf("expected 502 got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	m.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/accepted", nil))
	if rr.Code != http.StatusAccepted {
		t.Fatalf("expected 202 got %d", rr.Code)
	}
}
