package outcomes

import (
	"context"
	"encoding/json"
	"time"

	perr "reportrelay/internal/platform/errors"
	"reportrelay/internal/platform/store"
	"reportrelay/internal/services/reports/domain"
)

// Table is the ClickHouse table outcomes are appended to
const Table = "relay_run_outcomes"

const createTable = `CREATE TABLE IF NOT EXISTS ` + Table + ` (
	at           DateTime64(3, 'UTC'),
	run_id       String,
	phase        LowCardinality(String),
	status       LowCardinality(String),
	duration_ms  Int64,
	error_kind   LowCardinality(String),
	error_detail String,
	meta         String
) ENGINE = MergeTree
ORDER BY (phase, at)`

// Tally counts outcomes of one phase and status
type Tally struct {
	Phase  domain.Phase  `json:"phase"`
	Status domain.Status `json:"status"`
	Count  uint64        `json:"count"`
}

// Columnar appends outcomes to ClickHouse for reporting
type Columnar struct{ ch store.Clickhouse }

var _ domain.OutcomeRecorder = (*Columnar)(nil)

// NewColumnar panics on a nil connection
func NewColumnar(ch store.Clickhouse) *Columnar {
	if ch == nil {
		panic("outcomes: nil clickhouse")
	}
	return &Columnar{ch: ch}
}

// EnsureSchema creates the outcome table when missing
func (c *Columnar) EnsureSchema(ctx context.Context) error {
	if err := c.ch.Exec(ctx, createTable); err != nil {
		return perr.Wrap(err, perr.ErrorCodeDB, "create "+Table)
	}
	return nil
}

// Record implements domain.OutcomeRecorder
func (c *Columnar) Record(ctx context.Context, o domain.RunOutcome) error {
	meta := []byte("{}")
	if len(o.Meta) > 0 {
		b, err := json.Marshal(o.Meta)
		if err != nil {
			return perr.Wrap(err, perr.ErrorCodeJSON, "encode outcome meta")
		}
		meta = b
	}
	row := []any{
		o.At.UTC(), o.RunID, string(o.Phase), string(o.Status),
		o.DurationMs, o.ErrorKind, o.ErrorDetail, string(meta),
	}
	if err := c.ch.Insert(ctx, Table, [][]any{row}); err != nil {
		return perr.Wrap(err, perr.ErrorCodeDB, "insert outcome")
	}
	return nil
}

// Summary counts outcomes per phase and status since the given time
func (c *Columnar) Summary(ctx context.Context, since time.Time) ([]Tally, error) {
	rows, err := c.ch.Query(ctx, `SELECT phase, status, count() FROM `+Table+`
		WHERE at >= ? GROUP BY phase, status ORDER BY phase, status`, since.UTC())
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeDB, "query outcome summary")
	}
	defer rows.Close()

	out := []Tally{}
	for rows.Next() {
		var phase, status string
		var n uint64
		if err := rows.Scan(&phase, &status, &n); err != nil {
			return nil, perr.Wrap(err, perr.ErrorCodeDB, "scan outcome summary")
		}
		out = append(out, Tally{Phase: domain.Phase(phase), Status: domain.Status(status), Count: n})
	}
	if err := rows.Err(); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeDB, "iterate outcome summary")
	}
	return out, nil
}
