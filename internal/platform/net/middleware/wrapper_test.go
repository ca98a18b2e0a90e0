package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"reportrelay/internal/platform/net/middleware"
)

func TestWrappers_ReturnHandlers(t *testing.T) {
	if middleware.RequestID() == nil ||
		middleware.RealIP() == nil ||
		middleware.Timeout(time.Second) == nil ||
		middleware.NoCache() == nil ||
		middleware.StripSlashes() == nil ||
		middleware.Heartbeat("/healthz") == nil {
		t.Fatal("expected non nil handlers from wrappers")
	}
}

func TestCORS_DefaultsFillMissing(t *testing.T) {
	cors := middleware.CORS(middleware.CORSOptions{
		AllowedOrigins: []string{"https://panel.example.com"},
	})

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://panel.example.com")
	req.Header.Set("Access-Control-Request-Method", "PUT")
	req.Header.Set("Access-Control-Request-Headers", "Authorization")

	rr := httptest.NewRecorder()
	cors(h).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK && rr.Code != http.StatusNoContent {
		t.Fatalf("expected 200 or 204 got %d", rr.Code)
	}
	if rr.Header().Get("Access-Control-Allow-Methods") == "" {
		t.Fatal("expected Access-Control-Allow-Methods to be set")
	}
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://panel.example.com" {
		t.Fatalf("unexpected allow origin %q", got)
	}
}

func TestStack_OptionalPieces(t *testing.T) {
	base := middleware.Stack(middleware.StackOptions{})
	full := middleware.Stack(middleware.StackOptions{
		RateRPS: 5,
		Token:   "secret",
		Timeout: time.Second,
	})
	if len(full) != len(base)+3 {
		t.Fatalf("expected 3 extra middlewares, got base=%d full=%d", len(base), len(full))
	}
}

func TestStack_ChainServesAndEchoesRequestID(t *testing.T) {
	var h http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mw := middleware.Stack(middleware.StackOptions{Token: "secret"})
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/schedule/", nil)
	req.Header.Set("Authorization", "Bearer secret")
	req.Header.Set("X-Request-ID", "req-7")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204 got %d body=%s", rr.Code, rr.Body.String())
	}
	if rr.Header().Get("Cache-Control") == "" {
		t.Fatal("expected no-cache headers")
	}
}
