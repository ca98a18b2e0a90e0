package modkit

import (
	"context"
	"errors"
	"testing"

	"github.com/go-chi/chi/v5"

	"reportrelay/internal/modkit/module"
	phttp "reportrelay/internal/platform/net/http"
)

type plain struct {
	name    string
	mounted int
}

func (p *plain) MountRoutes(phttp.Router) { p.mounted++ }
func (p *plain) Ports() any               { return p.name + "-ports" }
func (p *plain) Name() string             { return p.name }

type starter struct {
	plain
	started int
	err     error
}

func (s *starter) Start(context.Context) error {
	s.started++
	return s.err
}

var _ Starter = (*starter)(nil)

// Boot writes the global registry so these tests stay serial

func TestBoot_RegistersStartsAndMounts(t *testing.T) {
	module.Reset()
	t.Cleanup(module.Reset)

	a := &plain{name: "control"}
	b := &starter{plain: plain{name: "scheduler"}}

	if err := Boot(context.Background(), phttp.AdaptChi(chi.NewRouter()), a, b); err != nil {
		t.Fatalf("Boot: %v", err)
	}
	if b.started != 1 {
		t.Fatalf("starter started %d times", b.started)
	}
	if a.mounted != 1 || b.mounted != 1 {
		t.Fatalf("mounted a=%d b=%d", a.mounted, b.mounted)
	}
	if p, ok := module.PortsAs[string]("scheduler"); !ok || p != "scheduler-ports" {
		t.Fatalf("registry lookup got %q ok=%v", p, ok)
	}
}

func TestBoot_NilRouterSkipsMount(t *testing.T) {
	module.Reset()
	t.Cleanup(module.Reset)

	a := &plain{name: "reports"}
	if err := Boot(context.Background(), nil, a); err != nil {
		t.Fatalf("Boot: %v", err)
	}
	if a.mounted != 0 {
		t.Fatal("nil router should not mount")
	}
}

func TestBoot_StartErrorStopsBeforeMount(t *testing.T) {
	module.Reset()
	t.Cleanup(module.Reset)

	boom := errors.New("settings unreadable")
	s := &starter{plain: plain{name: "scheduler"}, err: boom}
	err := Boot(context.Background(), phttp.AdaptChi(chi.NewRouter()), s)
	if !errors.Is(err, boom) {
		t.Fatalf("want wrapped start error, got %v", err)
	}
	if s.mounted != 0 {
		t.Fatal("routes must not mount after a failed start")
	}
}
