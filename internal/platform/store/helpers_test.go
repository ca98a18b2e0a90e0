package store

import (
	"context"
	"errors"
	"testing"

	perr "reportrelay/internal/platform/errors"

	"github.com/jackc/pgx/v5"
)

type cmdTag int64

func (c cmdTag) String() string      { return "UPDATE" }
func (c cmdTag) RowsAffected() int64 { return int64(c) }

type fakeRowQuerier struct {
	execTag CommandTag
	execErr error

	queryRows Rows
	queryErr  error

	scanErr error
	scanVal any
}

func (f *fakeRowQuerier) Exec(context.Context, string, ...any) (CommandTag, error) {
	return f.execTag, f.execErr
}

func (f *fakeRowQuerier) Query(context.Context, string, ...any) (Rows, error) {
	return f.queryRows, f.queryErr
}

func (f *fakeRowQuerier) QueryRow(context.Context, string, ...any) Row {
	return fakeRow{err: f.scanErr, val: f.scanVal}
}

type fakeRow struct {
	err error
	val any
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	switch p := dest[0].(type) {
	case *string:
		*p, _ = r.val.(string)
	case *int:
		*p, _ = r.val.(int)
	}
	return nil
}

type fakeRows struct {
	vals []string
	i    int
	err  error
}

func (r *fakeRows) Next() bool { r.i++; return r.i <= len(r.vals) }
func (r *fakeRows) Scan(dest ...any) error {
	*(dest[0].(*string)) = r.vals[r.i-1]
	return nil
}
func (r *fakeRows) Err() error        { return r.err }
func (r *fakeRows) Close()            {}
func (r *fakeRows) Columns() []string { return []string{"v"} }

func TestExecOne(t *testing.T) {
	ctx := context.Background()
	if err := ExecOne(ctx, &fakeRowQuerier{execTag: cmdTag(1)}, "UPDATE x"); err != nil {
		t.Fatalf("one row: %v", err)
	}
	if err := ExecOne(ctx, &fakeRowQuerier{execTag: cmdTag(0)}, "UPDATE x"); err == nil {
		t.Fatal("zero rows should fail")
	}
	boom := errors.New("boom")
	if err := ExecOne(ctx, &fakeRowQuerier{execErr: boom}, "UPDATE x"); !errors.Is(err, boom) {
		t.Fatalf("exec error should pass through, got %v", err)
	}
}

func TestScalar(t *testing.T) {
	ctx := context.Background()
	v, err := Scalar[string](ctx, &fakeRowQuerier{scanVal: "ref-123"}, "SELECT ref")
	if err != nil || v != "ref-123" {
		t.Fatalf("got %q %v", v, err)
	}

	_, err = Scalar[string](ctx, &fakeRowQuerier{scanErr: pgx.ErrNoRows}, "SELECT ref")
	if !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("no rows should map to not found, got %v", err)
	}
	if !IsNoRows(err) {
		t.Fatal("cause should still be ErrNoRows")
	}
}

func TestMany(t *testing.T) {
	ctx := context.Background()
	scan := func(r Row) (string, error) {
		var s string
		return s, r.Scan(&s)
	}
	out, err := Many(ctx, &fakeRowQuerier{queryRows: &fakeRows{vals: []string{"a", "b"}}}, scan, "SELECT v")
	if err != nil || len(out) != 2 || out[1] != "b" {
		t.Fatalf("got %v %v", out, err)
	}

	iterErr := errors.New("iter")
	if _, err := Many(ctx, &fakeRowQuerier{queryRows: &fakeRows{err: iterErr}}, scan, "SELECT v"); !errors.Is(err, iterErr) {
		t.Fatalf("expected iteration error, got %v", err)
	}
	if _, err := Many(ctx, &fakeRowQuerier{queryErr: iterErr}, scan, "SELECT v"); !errors.Is(err, iterErr) {
		t.Fatalf("expected query error, got %v", err)
	}
}
