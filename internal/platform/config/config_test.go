package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"reportrelay/internal/platform/config/raw"
	kit "reportrelay/internal/platform/testkit"
)

func TestPrefixAndKey(t *testing.T) {
	seller := New().Prefix("RELAY_").Prefix("SELLER_")
	if got := seller.key("BASE_URL"); got != "RELAY_SELLER_BASE_URL" {
		t.Fatalf("key() = %q", got)
	}
}

func TestMustAccessors(t *testing.T) {
	c := New().Prefix("APP_")
	t.Setenv("APP_NAME", "  relay ")
	t.Setenv("APP_WORKERS", " 8 ")
	t.Setenv("APP_ON", " true ")
	t.Setenv("APP_TIMEOUT", "250ms")
	t.Setenv("APP_BASE", "https://example.com/api")
	t.Setenv("APP_PORT", "4000")

	if got := c.MustString("NAME"); got != "relay" {
		t.Fatalf("MustString = %q", got)
	}
	if got := c.MustInt("WORKERS"); got != 8 {
		t.Fatalf("MustInt = %d", got)
	}
	if !c.MustBool("ON") {
		t.Fatalf("MustBool = false")
	}
	if got := c.MustDuration("TIMEOUT"); got != 250*time.Millisecond {
		t.Fatalf("MustDuration = %v", got)
	}
	if u := c.MustURL("BASE"); u.Host != "example.com" {
		t.Fatalf("MustURL host = %q", u.Host)
	}
	if got := c.MustPort("PORT"); got != ":4000" {
		t.Fatalf("MustPort = %q", got)
	}
	c.Require("NAME", "PORT")
}

func TestMustAccessorsPanic(t *testing.T) {
	c := New().Prefix("BAD_")
	t.Setenv("BAD_INT", "x")
	t.Setenv("BAD_BOOL", "nope")
	t.Setenv("BAD_DUR", "soon")
	t.Setenv("BAD_URL", "/relative")
	t.Setenv("BAD_PORT", "70000")
	t.Setenv("BAD_WS", "   ")

	kit.MustPanic(t, func() { _ = c.MustString("MISSING") })
	kit.MustPanic(t, func() { _ = c.MustInt("INT") })
	kit.MustPanic(t, func() { _ = c.MustBool("BOOL") })
	kit.MustPanic(t, func() { _ = c.MustDuration("DUR") })
	kit.MustPanic(t, func() { _ = c.MustURL("URL") })
	kit.MustPanic(t, func() { _ = c.MustPort("PORT") })
	kit.MustPanic(t, func() { c.Require("WS") })
}

func TestMayAccessors(t *testing.T) {
	c := New().Prefix("MAY_")
	t.Setenv("MAY_S", " v ")
	t.Setenv("MAY_I", "7")
	t.Setenv("MAY_I_BAD", "x")
	t.Setenv("MAY_F", "2.5")
	t.Setenv("MAY_B", "true")
	t.Setenv("MAY_D", "150ms")
	t.Setenv("MAY_CSV", " one, two , ,three ,, ")

	if c.MayString("S", "d") != "v" || c.MayString("NONE", "d") != "d" {
		t.Fatalf("MayString mismatch")
	}
	if c.MayInt("I", 0) != 7 || c.MayInt("I_BAD", 3) != 3 || c.MayInt("NONE", 9) != 9 {
		t.Fatalf("MayInt mismatch")
	}
	if c.MayFloat64("F", 0) != 2.5 {
		t.Fatalf("MayFloat64 mismatch")
	}
	if !c.MayBool("B", false) || !c.MayBool("NONE", true) {
		t.Fatalf("MayBool mismatch")
	}
	if c.MayDuration("D", time.Second) != 150*time.Millisecond {
		t.Fatalf("MayDuration mismatch")
	}
	got := c.MayCSV("CSV", nil)
	if len(got) != 3 || got[2] != "three" {
		t.Fatalf("MayCSV = %#v", got)
	}
}

func TestMayEnum(t *testing.T) {
	c := New().Prefix("E_")
	if got := c.MayEnum("MISS", "json", "json", "console"); got != "json" {
		t.Fatalf("MayEnum default = %q", got)
	}
	t.Setenv("E_FMT", "Console")
	if got := c.MayEnum("FMT", "json", "json", "console"); got != "Console" {
		t.Fatalf("MayEnum allowed value = %q", got)
	}
	t.Setenv("E_BAD", "xml")
	kit.MustPanic(t, func() { _ = c.MayEnum("BAD", "json", "json", "console") })
}

func TestMayURL(t *testing.T) {
	c := New().Prefix("U_")
	if c.MayURL("MISSING") != nil {
		t.Fatalf("missing should be nil")
	}
	t.Setenv("U_OK", "https://api.example.com/ext/ingest")
	if u := c.MayURL("OK"); u == nil || u.Path != "/ext/ingest" {
		t.Fatalf("MayURL = %v", u)
	}
	t.Setenv("U_REL", "relative/path")
	if c.MayURL("REL") != nil {
		t.Fatalf("relative should be nil")
	}
}

func TestMayHour(t *testing.T) {
	c := New().Prefix("H_")
	t.Setenv("H_OK", "5")
	t.Setenv("H_OOB", "24")
	if c.MayHour("OK", 0) != 5 || c.MayHour("OOB", 0) != 0 || c.MayHour("NONE", 3) != 3 {
		t.Fatalf("MayHour mismatch")
	}
}

func TestLoad_FileOverlay(t *testing.T) {
	t.Cleanup(raw.Reset)
	p := filepath.Join(t.TempDir(), "relay.yaml")
	body := "relay:\n  shop_id: shop-9\n  schedule:\n    base_hour: 2\n"
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("RELAY_CONFIG_FILE", p)

	c := Load().Prefix("RELAY_")
	if got := c.MustString("SHOP_ID"); got != "shop-9" {
		t.Fatalf("SHOP_ID = %q", got)
	}
	if got := c.MayHour("SCHEDULE_BASE_HOUR", 0); got != 2 {
		t.Fatalf("SCHEDULE_BASE_HOUR = %d", got)
	}
}

func TestLoad_BrokenFileDegrades(t *testing.T) {
	t.Cleanup(raw.Reset)
	p := filepath.Join(t.TempDir(), "relay.yaml")
	if err := os.WriteFile(p, []byte("relay: [oops"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("RELAY_CONFIG_FILE", p)
	kit.MustNotPanic(t, func() { _ = Load() })
}
