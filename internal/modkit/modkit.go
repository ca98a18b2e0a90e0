package modkit

import (
	"context"
	"fmt"

	"reportrelay/internal/modkit/module"
	phttp "reportrelay/internal/platform/net/http"
)

// Module is the surface main wires
type Module = module.Module

// Starter is a module with background work that runs until ctx ends
type Starter interface {
	Module
	Start(ctx context.Context) error
}

// Boot registers every module's ports, starts the starters in order and mounts routes on r
// r may be nil for one shot commands that serve no http
func Boot(ctx context.Context, r phttp.Router, mods ...Module) error {
	for _, m := range mods {
		module.Register(m.Name(), m.Ports())
	}
	for _, m := range mods {
		s, ok := m.(Starter)
		if !ok {
			continue
		}
		if err := s.Start(ctx); err != nil {
			return fmt.Errorf("start %s: %w", m.Name(), err)
		}
	}
	if r == nil {
		return nil
	}
	for _, m := range mods {
		m.MountRoutes(r)
	}
	return nil
}
