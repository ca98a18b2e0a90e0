package modkit

import (
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"

	phttp "reportrelay/internal/platform/net/http"
)

type controlPorts struct {
	Runner string
}

func TestOptions_ControlApiShape(t *testing.T) {
	t.Parallel()

	var c buildCfg
	for _, o := range []Option{
		WithName("control"),
		WithPrefix("/api/v1"),
		WithSwagger(true),
		WithPorts(controlPorts{Runner: "svc"}),
	} {
		o(&c)
	}

	if c.name != "control" || c.prefix != "/api/v1" || !c.swaggerOn {
		t.Fatalf("unexpected cfg: %+v", c)
	}
	p, ok := c.ports.(controlPorts)
	if !ok || p.Runner != "svc" {
		t.Fatalf("ports lost their concrete type: %T %+v", c.ports, c.ports)
	}

	WithSwagger(false)(&c)
	if c.swaggerOn {
		t.Fatal("later WithSwagger should win")
	}
}

func TestWithMiddlewares_AppendInOrder(t *testing.T) {
	t.Parallel()

	var seen []string
	tag := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = append(seen, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	var c buildCfg
	WithMiddlewares(tag("auth"), tag("ratelimit"))(&c)
	WithMiddlewares(tag("timeout"))(&c)

	var h http.Handler = http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
	for i := len(c.mw) - 1; i >= 0; i-- {
		h = c.mw[i](h)
	}
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if want := []string{"auth", "ratelimit", "timeout"}; !slices.Equal(seen, want) {
		t.Fatalf("order = %v want %v", seen, want)
	}
}

func TestRouterHooks(t *testing.T) {
	t.Parallel()

	var subCalls, regCalls int
	var c buildCfg
	WithSubrouter(func(r phttp.Router) phttp.Router { subCalls++; return r })(&c)
	WithRegister(func(phttp.Router) { regCalls++ })(&c)

	c.register(c.subrouter(nil))
	if subCalls != 1 || regCalls != 1 {
		t.Fatalf("sub=%d reg=%d", subCalls, regCalls)
	}
}
