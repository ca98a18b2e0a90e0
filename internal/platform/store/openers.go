package store

import (
	"context"
	"fmt"
	"time"

	chx "reportrelay/internal/platform/store/ch"
	"reportrelay/internal/platform/store/pg"
	ptime "reportrelay/internal/platform/time"
)

const (
	backoffStart   = 150 * time.Millisecond
	backoffCeiling = 2 * time.Second
)

// openPG opens pg and wraps it with our sql adapter once the pool answers a ping
func openPG(ctx context.Context, cfg Config, s *Store) (TxRunner, error) {
	var tracer pg.QueryTracer
	if cfg.PG.LogSQL {
		tracer = pg.Tracer(s.Log)
	}

	p, err := pg.Open(ctx, pg.Config{
		URL:              cfg.PG.URL,
		MaxConns:         cfg.PG.MaxConns,
		SlowMs:           cfg.PG.SlowQueryMs,
		AppName:          cfg.AppName,
		StatementTimeout: cfg.PG.StatementTimeout,
	}, tracer)
	if err != nil {
		return nil, err
	}

	attempts := cfg.PG.ConnectRetries
	if attempts <= 0 {
		attempts = 20
	}
	pingTimeout := cfg.PG.PingTimeout
	if pingTimeout <= 0 {
		pingTimeout = 3 * time.Second
	}

	var lastErr error
	backoff := backoffStart
	for i := 0; i < attempts; i++ {
		toCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		lastErr = p.Pool.Ping(toCtx)
		cancel()

		if lastErr == nil {
			return newPGAdapter(p), nil
		}
		s.Log.Warn().Err(lastErr).Int("attempt", i+1).Msg("postgres not ready")
		if i == attempts-1 {
			break
		}
		if err := ptime.Sleep(ctx, backoff); err != nil {
			p.Close()
			return nil, err
		}
		backoff = min(backoff*2, backoffCeiling)
	}

	p.Close()
	return nil, fmt.Errorf("postgres ping failed after %d attempts: %w", attempts, lastErr)
}

func openCH(ctx context.Context, cfg Config, _ *Store) (Clickhouse, error) {
	c, err := chx.Open(ctx, chx.Config{
		URL:        cfg.CH.URL,
		ClientName: cfg.CH.ClientName,
		ClientTag:  cfg.CH.ClientTag,
	})
	if err != nil {
		return nil, err
	}
	return newCHAdapter(c), nil
}
