// Package module wires the control api under /api/v1
package module

import (
	"reportrelay/internal/modkit"
	"reportrelay/internal/modkit/swaggerkit"
	phttp "reportrelay/internal/platform/net/http"
	"reportrelay/internal/services/control/domain"
	chttp "reportrelay/internal/services/control/http"

	// registers the "relay" swagger instance
	_ "reportrelay/internal/services/control/docs"
)

// Prefix is where the versioned api lives
const Prefix = "/api/v1"

// SwaggerInstance is the registered spec name
const SwaggerInstance = "relay"

// Module implements the control api module
type Module struct {
	built modkit.Built
	opts  Options
	ports domain.Ports
}

// New builds the module; the runner and scheduler ports must be injected with modkit.WithPorts
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	o := FromConfig(deps.Cfg)
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("control"),
		modkit.WithPrefix(Prefix),
		modkit.WithMiddlewares(o.Stack()...),
		modkit.WithSwagger(o.Swagger),
	}, opts...)...)

	p, ok := b.Ports.(domain.Ports)
	if !ok || p.Runner == nil || p.Scheduler == nil {
		panic("control module requires Runner and Scheduler ports")
	}

	external := b.Register
	b.Register = func(r phttp.Router) {
		chttp.Register(r, p)
		external(r)
	}
	return &Module{built: b, opts: o, ports: p}
}

// Name returns the module name
func (m *Module) Name() string { return m.built.Name }

// Ports returns the injected ports
func (m *Module) Ports() any { return m.ports }

// MountRoutes mounts the api and, when enabled, the swagger ui
func (m *Module) MountRoutes(r phttp.Router) {
	swaggerkit.Mount(r, m.built.SwaggerOn, SwaggerInstance)
	m.built.Mount(r)
}
