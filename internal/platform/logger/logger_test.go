package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"

	kit "reportrelay/internal/platform/testkit"

	"github.com/rs/zerolog"
)

func TestParseLevel_AllBranches(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"trace", "trace"},
		{"debug", "debug"},
		{"info", "info"},
		{"warn", "warn"},
		{"warning", "warn"},
		{"error", "error"},
		{"fatal", "fatal"},
		{"panic", "panic"},
		{"", "debug"},
		{"   nonsense   ", "debug"},
	}
	for _, c := range cases {
		lvl := parseLevel(c.in)
		if strings.ToLower(lvl.String()) != c.want {
			t.Fatalf("parseLevel(%q) = %q, want %q", c.in, lvl, c.want)
		}
	}
}

func TestInit_Get_Named_C_WithRun(t *testing.T) {
	var buf bytes.Buffer

	Init(Options{
		Level:       "info",
		Format:      "console",
		Service:     "relay-a",
		Component:   "root",
		Writer:      &buf,
		WithCaller:  true,
		SampleEvery: 2,
		StaticFields: map[string]string{
			"build": "test",
		},
	})

	// re-sample to N=1 so every line emits
	rv := Get().Sample(&zerolog.BasicSampler{N: 1})
	rp := &rv
	rp.Info().Str("k", "v").Msg("root-msg")

	nv := Named("scheduler").Sample(&zerolog.BasicSampler{N: 1})
	np := &nv
	np.Info().Msg("named-msg")

	ctx := WithRequest(context.Background(), "req-123")
	ctx = WithRun(ctx, "run-9", "NEW_ORDERS")
	cv := C(ctx).Sample(&zerolog.BasicSampler{N: 1})
	cp := &cv
	cp.Info().Msg("ctx-msg")

	out := buf.String()
	kit.MustContain(t, out, "root-msg")
	kit.MustContain(t, out, "named-msg")
	kit.MustContain(t, out, "ctx-msg")
	kit.MustContain(t, out, "scheduler")
	kit.MustContain(t, out, "req-123")
	kit.MustContain(t, out, "run-9")
	kit.MustContain(t, out, "NEW_ORDERS")
	kit.MustContain(t, out, "relay-a")
	kit.MustContain(t, out, "build=")
}

func TestWith_ReplacesAndSkipsEmpty(t *testing.T) {
	ctx := With(context.Background(), "ref", "a")
	ctx = With(ctx, "ref", "b")
	ctx = With(ctx, "kind", "")
	fs, _ := ctx.Value(ctxKey{}).([]field)
	if len(fs) != 1 || fs[0].v != "b" {
		t.Fatalf("fields = %+v, want single ref=b", fs)
	}

	// parent ctx keeps its own view
	parent := With(context.Background(), "run_id", "r1")
	_ = With(parent, "kind", "AD_SPEND")
	pf, _ := parent.Value(ctxKey{}).([]field)
	if len(pf) != 1 {
		t.Fatalf("parent fields mutated: %+v", pf)
	}
}

func TestFromEnv_Independently(t *testing.T) {
	t.Setenv("RELAY_LOG_LEVEL", "warn")
	t.Setenv("RELAY_LOG_FORMAT", "json")
	t.Setenv("RELAY_LOG_SERVICE", "relay-b")
	t.Setenv("RELAY_LOG_COMPONENT", "comp-b")
	t.Setenv("RELAY_LOG_CALLER", "true")
	t.Setenv("RELAY_LOG_SAMPLE_EVERY", "5")

	opt := FromEnv()
	if strings.ToLower(opt.Level) != "warn" {
		t.Fatalf("FromEnv Level = %q, want warn", opt.Level)
	}
	if opt.Format != "json" || opt.Service != "relay-b" || opt.Component != "comp-b" {
		t.Fatalf("FromEnv fields mismatch: %+v", opt)
	}
	if !opt.WithCaller || opt.SampleEvery != 5 {
		t.Fatalf("FromEnv caller/sample mismatch: %+v", opt)
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	opt := FromEnv()
	if opt.Service != "reportrelay" || opt.Format != "console" {
		t.Fatalf("defaults mismatch: %+v", opt)
	}
}
