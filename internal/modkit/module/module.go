// Package module holds the relay module contract and the bootstrap port registry
package module

import (
	phttp "reportrelay/internal/platform/net/http"
)

// Module is what main wires: reports, scheduler and the control api all satisfy it
// it lives apart from modkit so a module package can import it without a cycle
type Module interface {
	MountRoutes(r phttp.Router)
	Ports() any
	Name() string
}
