package ch

import (
	"context"
	"testing"
)

func TestBuildClientInfo(t *testing.T) {
	info := BuildClientInfo("", "relay")
	if len(info.Products) != 4 {
		t.Fatalf("expected 4 products, got %d", len(info.Products))
	}
	if info.Products[0].Name != "reportrelay" || info.Products[0].Version != "relay" {
		t.Fatalf("unexpected first product %+v", info.Products[0])
	}
	if info.Products[1].Name != "go" || info.Products[1].Version == "" {
		t.Fatalf("unexpected go product %+v", info.Products[1])
	}
}

func TestOpen_BadDSN(t *testing.T) {
	if _, err := Open(context.Background(), Config{URL: "://nope"}); err == nil {
		t.Fatal("expected dsn error")
	}
}

func TestInsert_EmptyIsNoop(t *testing.T) {
	c := &CH{}
	if err := c.Insert(context.Background(), "relay_outcomes", nil); err != nil {
		t.Fatalf("empty insert: %v", err)
	}
}

func TestInsert_RejectsSuspiciousTable(t *testing.T) {
	c := &CH{}
	if err := c.Insert(context.Background(), "x; DROP TABLE y", [][]any{{1}}); err == nil {
		t.Fatal("expected table name rejection")
	}
}
