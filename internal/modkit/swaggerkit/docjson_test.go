package swaggerkit

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	phttp "reportrelay/internal/platform/net/http"
	kit "reportrelay/internal/platform/testkit"
)

const sample = `{"swagger":"2.0","info":{"title":"Relay","version":"1"},"paths":{"/runs/import":{"post":{"responses":{"200":{"description":"ok"}}}}}}`

func fetch(t *testing.T, instance string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rr := httptest.NewRecorder()
	serveDocJSON(instance)(rr, httptest.NewRequest(http.MethodGet, "/api/docs/doc.json", nil))
	var spec map[string]any
	if rr.Code == http.StatusOK {
		if err := json.Unmarshal(rr.Body.Bytes(), &spec); err != nil {
			t.Fatalf("spec is not json: %v", err)
		}
	}
	return rr, spec
}

func TestServeDocJSON_LiftsAndDecorates(t *testing.T) {
	kit.Swap(t, &docReader, func(string) (string, error) { return sample, nil })

	t.Setenv("RELAY_API_DOCS_TITLE_SUFFIX", "(dev)")

	rr, spec := fetch(t, "relay")
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	if spec["openapi"] != "3.0.3" || spec["swagger"] != nil {
		t.Fatalf("expected oas3 lift, got %v / %v", spec["openapi"], spec["swagger"])
	}
	if title := spec["info"].(map[string]any)["title"]; title != "Relay (dev)" {
		t.Fatalf("title = %v", title)
	}
	op := spec["paths"].(map[string]any)["/runs/import"].(map[string]any)["post"].(map[string]any)
	resps := op["responses"].(map[string]any)
	for _, code := range []string{"200", "400", "500"} {
		if _, ok := resps[code]; !ok {
			t.Fatalf("missing %s response", code)
		}
	}
	schemas := spec["components"].(map[string]any)["schemas"].(map[string]any)
	if _, ok := schemas["ErrorResponse"]; !ok {
		t.Fatal("ErrorResponse schema missing")
	}
	bad := resps["400"].(map[string]any)["content"].(map[string]any)["application/json"].(map[string]any)["example"].(map[string]any)
	if bad["kind"] != "validation" || bad["field"] != "date" {
		t.Fatalf("400 example = %v", bad)
	}
	if rr.Header().Get("Cache-Control") != "no-store" {
		t.Fatal("doc must not be cached")
	}
}

func TestServeDocJSON_Errors(t *testing.T) {
	t.Run("unregistered", func(t *testing.T) {
		kit.Swap(t, &docReader, func(string) (string, error) { return "", errors.New("nope") })
		if rr, _ := fetch(t, "missing"); rr.Code != http.StatusNotFound {
			t.Fatalf("status %d", rr.Code)
		}
	})
	t.Run("broken", func(t *testing.T) {
		kit.Swap(t, &docReader, func(string) (string, error) { return "{not json", nil })
		if rr, _ := fetch(t, "broken"); rr.Code != http.StatusInternalServerError {
			t.Fatalf("status %d", rr.Code)
		}
	})
}

func TestEnsureServers_DowngradesOAS31(t *testing.T) {
	spec := map[string]any{"openapi": "3.1.0", "servers": []any{"keep"}}
	ensureServers(spec, "/api/v1")
	if spec["openapi"] != "3.0.3" {
		t.Fatalf("openapi = %v", spec["openapi"])
	}
	if s := spec["servers"].([]any); len(s) != 1 || s[0] != "keep" {
		t.Fatalf("servers overwritten: %v", s)
	}
}

func TestMount_Disabled(t *testing.T) {
	srv := phttp.NewServer(phttp.ServerOptions{})
	Mount(srv.Router(), false, "relay")
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/docs/doc.json", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("docs should not be mounted, got %d", rr.Code)
	}
}

func TestMount_RedirectsAndServesDoc(t *testing.T) {
	kit.Swap(t, &docReader, func(string) (string, error) { return sample, nil })

	srv := phttp.NewServer(phttp.ServerOptions{})
	Mount(srv.Router(), true, "relay")

	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/docs", nil))
	if rr.Code != http.StatusPermanentRedirect {
		t.Fatalf("redirect status %d", rr.Code)
	}
	rr = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/docs/doc.json", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("doc status %d", rr.Code)
	}
}
