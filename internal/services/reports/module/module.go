// Package module wires the report pipeline and exposes its ports
package module

import (
	"context"

	"reportrelay/internal/modkit"
	phttp "reportrelay/internal/platform/net/http"
	"reportrelay/internal/services/outcomes"
	"reportrelay/internal/services/reports/domain"
	"reportrelay/internal/services/reports/repo"
	"reportrelay/internal/services/reports/service"
)

// state is what both the postgres and the in memory repo provide
type state interface {
	domain.ReferenceCache
	domain.Settings
	domain.OutcomeRecorder
	domain.HistoryPort
}

// Module defines the reports module
type Module struct {
	deps  modkit.Deps
	opts  Options
	svc   *service.Svc
	ports Ports
}

// New constructs the reports module; state lives in postgres when deps.PG is set
func New(deps modkit.Deps, overrides Options, ad Adapters) *Module {
	opts := FromConfig(deps.Cfg).merge(overrides)

	var st state
	if deps.PG != nil {
		st = repo.NewPG(deps.PG)
	} else {
		st = repo.NewMemory(opts.HistoryKeep)
	}
	ids := service.NewIdentities(st)

	recorders := []domain.OutcomeRecorder{outcomes.NewLogged(nil), st}
	if ad.LogCollector != nil {
		recorders = append(recorders, ad.LogCollector(ids))
	}
	if deps.CH != nil {
		recorders = append(recorders, outcomes.NewColumnar(deps.CH))
	}
	fan := outcomes.NewFanout(recorders...)

	var arch domain.Archive
	if opts.Archive {
		arch = ad.Archive
	}
	svc := service.New(service.Deps{
		Reports:  ad.Reports,
		Spend:    ad.Spend,
		Sink:     ad.Sink,
		Refs:     repo.WithSeed(st, opts.seeds()),
		Outcomes: fan,
		Archive:  arch,
	}, service.Config{
		ShopID:       opts.ShopID,
		PollInterval: opts.PollInterval,
		PollAttempts: opts.PollAttempts,
		PageSize:     opts.PageSize,
		Timeouts:     opts.Timeouts,
		ArchiveOn:    arch != nil,
	})

	m := &Module{deps: deps, opts: opts, svc: svc}
	m.ports = Ports{
		Runner:   svc,
		Identity: ids,
		Tracker:  svc,
		Settings: st,
		History:  st,
		Outcomes: fan,
	}
	if ad.Registrar != nil {
		m.ports.Connector = service.NewConnector(ids, ad.Registrar, opts.ShopID)
	}
	return m
}

// Name returns the module name
func (m *Module) Name() string { return "reports" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// Options returns the merged options
func (m *Module) Options() Options { return m.opts }

// MountRoutes returns no HTTP routes; the control module owns the api
func (m *Module) MountRoutes(_ phttp.Router) {}

// Flush waits for outcome writes still in flight
func (m *Module) Flush(ctx context.Context) error { return m.svc.Flush(ctx) }

// Close stops polling and flushes outcome writes
func (m *Module) Close() { m.svc.Close() }
