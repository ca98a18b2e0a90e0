package modkit

import (
	"net/http"

	phttp "reportrelay/internal/platform/net/http"
)

// Built is a plain struct with the fields modules care about
type Built struct {
	Name      string
	Prefix    string
	Mw        []func(http.Handler) http.Handler
	Ports     any
	SwaggerOn bool

	// router hooks set via options and exposed to modules
	Subrouter func(phttp.Router) phttp.Router
	Register  func(phttp.Router)
}

// Build applies Option funcs to an internal buildCfg and returns a plain struct
func Build(opts ...Option) Built {
	var c buildCfg
	for _, o := range opts {
		o(&c)
	}
	if c.subrouter == nil {
		c.subrouter = func(r phttp.Router) phttp.Router { return r }
	}
	if c.register == nil {
		c.register = func(phttp.Router) {}
	}
	return Built{
		Name:      c.name,
		Prefix:    c.prefix,
		Mw:        append([]func(http.Handler) http.Handler(nil), c.mw...),
		Ports:     c.ports,
		SwaggerOn: c.swaggerOn,
		Subrouter: c.subrouter,
		Register:  c.register,
	}
}

// Mount mounts the built module under its prefix with its middleware, then calls Register
func (b Built) Mount(r phttp.Router) {
	attach := func(sub phttp.Router) {
		if len(b.Mw) > 0 {
			sub.Use(b.Mw...)
		}
		b.Register(b.Subrouter(sub))
	}
	if b.Prefix == "" {
		r.Group(attach)
		return
	}
	r.Route(b.Prefix, attach)
}
