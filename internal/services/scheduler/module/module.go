// Package module wires the fixed anchor scheduler
package module

import (
	"context"

	"reportrelay/internal/modkit"
	phttp "reportrelay/internal/platform/net/http"
	reports "reportrelay/internal/services/reports/domain"
	"reportrelay/internal/services/scheduler/domain"
	"reportrelay/internal/services/scheduler/service"
)

// Ports defines scheduler module ports exposed via the registry
type Ports struct {
	Scheduler domain.SchedulePort
}

// Module defines the scheduler module
type Module struct {
	svc   *service.Scheduler
	ports Ports
}

// New constructs the scheduler over the pipeline runner and the shared settings store
func New(deps modkit.Deps, overrides Options, runner domain.CycleRunner, settings reports.Settings, outcomes reports.OutcomeRecorder) *Module {
	opts := FromConfig(deps.Cfg)
	if overrides.IntervalHours != 0 {
		opts.IntervalHours = overrides.IntervalHours
	}
	if overrides.BaseHour != 0 {
		opts.BaseHour = overrides.BaseHour
	}

	svc := service.New(runner, settings, outcomes, deps.ClockOrSystem(), service.Config{
		BaseHour:       opts.BaseHour,
		IntervalHours:  opts.IntervalHours,
		DefaultEnabled: opts.Enabled,
	})
	return &Module{svc: svc, ports: Ports{Scheduler: svc}}
}

// Start arms the timer until ctx ends
func (m *Module) Start(ctx context.Context) error { return m.svc.Start(ctx) }

// Name returns the module name
func (m *Module) Name() string { return "scheduler" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// MountRoutes returns no HTTP routes; the control module owns the api
func (m *Module) MountRoutes(_ phttp.Router) {}
