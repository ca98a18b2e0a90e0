//go:build integration

package store_test

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"

	perr "reportrelay/internal/platform/errors"
	"reportrelay/internal/platform/logger"
	"reportrelay/internal/platform/store"
	"reportrelay/internal/platform/store/migrate"
	"reportrelay/internal/platform/store/pgtest"
)

var schema = fstest.MapFS{
	"001_kv.up.sql":   {Data: []byte(`CREATE TABLE kv (k TEXT PRIMARY KEY, v TEXT NOT NULL);`)},
	"001_kv.down.sql": {Data: []byte(`DROP TABLE kv;`)},
}

func TestStore_PostgresRoundTrip(t *testing.T) {
	dsn := pgtest.Start(t)
	ctx := context.Background()

	r, err := migrate.New(ctx, migrate.Options{URL: dsn, Source: schema})
	if err != nil {
		t.Fatalf("migrate.New: %v", err)
	}
	if err := r.Up(); err != nil {
		t.Fatalf("Up: %v", err)
	}
	if err := r.Up(); err != nil {
		t.Fatalf("second Up should be a no-op: %v", err)
	}
	if v, dirty, err := r.Version(); err != nil || v != 1 || dirty {
		t.Fatalf("version %d dirty=%v err=%v", v, dirty, err)
	}
	_ = r.Close()

	st, err := store.Open(ctx, store.Config{
		AppName: "relay-test",
		PG:      store.PGConfig{Enabled: true, URL: dsn, LogSQL: true},
	}, store.WithLogger(*logger.Get()))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close(ctx) })

	if err := st.Guard(ctx); err != nil {
		t.Fatalf("Guard: %v", err)
	}

	if err := store.ExecOne(ctx, st.PG, `INSERT INTO kv (k, v) VALUES ($1, $2)`, "client_id", "cid-1"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	got, err := store.Scalar[string](ctx, st.PG, `SELECT v FROM kv WHERE k = $1`, "client_id")
	if err != nil || got != "cid-1" {
		t.Fatalf("scalar %q %v", got, err)
	}
	if _, err := store.Scalar[string](ctx, st.PG, `SELECT v FROM kv WHERE k = $1`, "missing"); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	rollback := errors.New("rollback")
	err = st.PG.Tx(ctx, func(q store.RowQuerier) error {
		if _, err := q.Exec(ctx, `INSERT INTO kv (k, v) VALUES ('tmp', 'x')`); err != nil {
			return err
		}
		return rollback
	})
	if !errors.Is(err, rollback) {
		t.Fatalf("expected rollback error, got %v", err)
	}
	n, err := store.Scalar[int](ctx, st.PG, `SELECT count(*)::int FROM kv`)
	if err != nil || n != 1 {
		t.Fatalf("rolled back row leaked: n=%d err=%v", n, err)
	}
}
