// Package migrate applies embedded SQL migrations with golang-migrate
package migrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	"reportrelay/internal/platform/logger"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	_ "github.com/lib/pq" // database/sql driver for golang-migrate
)

// DefaultTable is the version table name
const DefaultTable = "relay_schema_migrations"

// Options selects the database and migration source
type Options struct {
	URL   string
	Table string
	// Source holds NNN_name.up.sql / NNN_name.down.sql at its root
	Source fs.FS
}

// Runner wraps a migrate instance and its connection
type Runner struct {
	m  *migrate.Migrate
	db *sql.DB
}

// New opens the database, pings it and prepares the iofs source
func New(ctx context.Context, opt Options) (*Runner, error) {
	if opt.Source == nil {
		return nil, errors.New("migrate: nil source")
	}
	if opt.Table == "" {
		opt.Table = DefaultTable
	}

	db, err := sql.Open("postgres", opt.URL)
	if err != nil {
		return nil, fmt.Errorf("migrate: open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: ping: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{MigrationsTable: opt.Table})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: driver: %w", err)
	}
	src, err := iofs.New(opt.Source, ".")
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: source: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: init: %w", err)
	}
	m.Log = migrateLogger{}
	return &Runner{m: m, db: db}, nil
}

// Up applies all pending migrations; nothing to do is not an error
func (r *Runner) Up() error {
	err := r.m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Named("migrate").Info().Msg("schema up to date")
		return nil
	}
	if err != nil {
		return fmt.Errorf("migrate: up: %w", err)
	}
	logger.Named("migrate").Info().Msg("migrations applied")
	return nil
}

// Down rolls back the last migration
func (r *Runner) Down() error {
	err := r.m.Steps(-1)
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate: down: %w", err)
	}
	return nil
}

// Version reports the applied version; zero with no error means nothing applied yet
func (r *Runner) Version() (uint, bool, error) {
	v, dirty, err := r.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return v, dirty, err
}

// Close releases the source and the database handle
func (r *Runner) Close() error {
	srcErr, dbErr := r.m.Close()
	return errors.Join(srcErr, dbErr)
}

// Up is the one-shot form used at boot
func Up(ctx context.Context, opt Options) error {
	r, err := New(ctx, opt)
	if err != nil {
		return err
	}
	defer func() { _ = r.Close() }()
	return r.Up()
}

type migrateLogger struct{}

func (migrateLogger) Printf(format string, v ...any) {
	logger.Named("migrate").Debug().Msgf(format, v...)
}

func (migrateLogger) Verbose() bool { return false }
