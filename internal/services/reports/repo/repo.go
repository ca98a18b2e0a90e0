// Package repo stores report references, relay settings and run outcomes
package repo

import (
	"context"
	"embed"
	"encoding/json"
	"io/fs"
	"sync"
	"time"

	perr "reportrelay/internal/platform/errors"
	"reportrelay/internal/platform/store"
	"reportrelay/internal/services/reports/domain"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrations returns the schema files rooted at the migration directory
func Migrations() fs.FS {
	sub, err := fs.Sub(migrations, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

// PG is the Postgres backed reference cache and settings store
type PG struct {
	q   store.RowQuerier
	now func() time.Time
}

// NewPG binds the repository to a querier
func NewPG(q store.RowQuerier) *PG {
	if q == nil {
		panic("reports repo requires a non nil querier")
	}
	return &PG{q: q, now: time.Now}
}

// Get returns the last reference stored for kind
func (r *PG) Get(ctx context.Context, kind domain.Kind) (domain.ReferenceID, bool, error) {
	v, err := store.Scalar[string](ctx, r.q, `SELECT reference_id FROM report_references WHERE kind = $1`, string(kind))
	if perr.IsCode(err, perr.ErrorCodeNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, perr.FromPostgres(err, "read report reference")
	}
	return domain.ReferenceID(v), true, nil
}

// Put upserts the reference for kind
func (r *PG) Put(ctx context.Context, kind domain.Kind, ref domain.ReferenceID) error {
	err := store.ExecOne(ctx, r.q, `
		INSERT INTO report_references (kind, reference_id, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (kind) DO UPDATE SET reference_id = EXCLUDED.reference_id, updated_at = EXCLUDED.updated_at
	`, string(kind), string(ref), r.now().UTC())
	return perr.FromPostgres(err, "write report reference")
}

// GetSetting reads one setting
func (r *PG) GetSetting(ctx context.Context, key string) (string, bool, error) {
	v, err := store.Scalar[string](ctx, r.q, `SELECT value FROM relay_settings WHERE key = $1`, key)
	if perr.IsCode(err, perr.ErrorCodeNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, perr.FromPostgres(err, "read setting")
	}
	return v, true, nil
}

// PutSetting upserts one setting
func (r *PG) PutSetting(ctx context.Context, key, value string) error {
	err := store.ExecOne(ctx, r.q, `
		INSERT INTO relay_settings (key, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`, key, value, r.now().UTC())
	return perr.FromPostgres(err, "write setting")
}

// Record stores one run outcome
func (r *PG) Record(ctx context.Context, o domain.RunOutcome) error {
	meta, err := json.Marshal(o.Meta)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeJSON, "encode outcome meta")
	}
	_, err = r.q.Exec(ctx, `
		INSERT INTO run_outcomes (run_id, phase, status, duration_ms, error_kind, error_detail, meta, at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (run_id) DO NOTHING
	`, o.RunID, string(o.Phase), string(o.Status), o.DurationMs, o.ErrorKind, o.ErrorDetail, meta, o.At.UTC())
	return perr.FromPostgres(err, "write run outcome")
}

// Recent lists the newest outcomes, optionally for one phase
func (r *PG) Recent(ctx context.Context, phase domain.Phase, limit int) ([]domain.RunOutcome, error) {
	if limit <= 0 {
		limit = 20
	}
	out, err := store.Many(ctx, r.q, scanOutcome, `
		SELECT run_id, phase, status, duration_ms, error_kind, error_detail, meta, at
		FROM run_outcomes
		WHERE $1 = '' OR phase = $1
		ORDER BY at DESC
		LIMIT $2
	`, string(phase), limit)
	return out, perr.FromPostgres(err, "list run outcomes")
}

func scanOutcome(row store.Row) (domain.RunOutcome, error) {
	var (
		o           domain.RunOutcome
		phase, stat string
		meta        []byte
	)
	if err := row.Scan(&o.RunID, &phase, &stat, &o.DurationMs, &o.ErrorKind, &o.ErrorDetail, &meta, &o.At); err != nil {
		return o, err
	}
	o.Phase, o.Status = domain.Phase(phase), domain.Status(stat)
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &o.Meta); err != nil {
			return o, err
		}
	}
	return o, nil
}

// Memory is the in process store used when Postgres is not configured
type Memory struct {
	mu       sync.RWMutex
	refs     map[domain.Kind]domain.ReferenceID
	settings map[string]string
	outcomes []domain.RunOutcome
	keep     int
}

// NewMemory returns an empty in memory store that keeps the last keep outcomes
func NewMemory(keep int) *Memory {
	if keep <= 0 {
		keep = 100
	}
	return &Memory{
		refs:     map[domain.Kind]domain.ReferenceID{},
		settings: map[string]string{},
		keep:     keep,
	}
}

// Get returns the stored reference for kind
func (m *Memory) Get(_ context.Context, kind domain.Kind) (domain.ReferenceID, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.refs[kind]
	return r, ok, nil
}

// Put stores the reference for kind
func (m *Memory) Put(_ context.Context, kind domain.Kind, ref domain.ReferenceID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refs[kind] = ref
	return nil
}

// GetSetting reads one setting
func (m *Memory) GetSetting(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.settings[key]
	return v, ok, nil
}

// PutSetting stores one setting
func (m *Memory) PutSetting(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings[key] = value
	return nil
}

// Record appends an outcome, dropping the oldest past the limit
func (m *Memory) Record(_ context.Context, o domain.RunOutcome) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes = append(m.outcomes, o)
	if over := len(m.outcomes) - m.keep; over > 0 {
		m.outcomes = append(m.outcomes[:0:0], m.outcomes[over:]...)
	}
	return nil
}

// Recent lists the newest outcomes first, optionally for one phase
func (m *Memory) Recent(_ context.Context, phase domain.Phase, limit int) ([]domain.RunOutcome, error) {
	if limit <= 0 {
		limit = 20
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.RunOutcome
	for i := len(m.outcomes) - 1; i >= 0 && len(out) < limit; i-- {
		if phase == "" || m.outcomes[i].Phase == phase {
			out = append(out, m.outcomes[i])
		}
	}
	return out, nil
}

// Seeded falls back to configured references when the cache has none
type Seeded struct {
	domain.ReferenceCache
	seed map[domain.Kind]domain.ReferenceID
}

// WithSeed wraps a cache with configured fallback references; blank entries are ignored
func WithSeed(c domain.ReferenceCache, seed map[domain.Kind]domain.ReferenceID) *Seeded {
	s := &Seeded{ReferenceCache: c, seed: map[domain.Kind]domain.ReferenceID{}}
	for k, v := range seed {
		if !v.Empty() {
			s.seed[k] = v
		}
	}
	return s
}

// Get prefers the stored reference, then the configured one
func (s *Seeded) Get(ctx context.Context, kind domain.Kind) (domain.ReferenceID, bool, error) {
	ref, ok, err := s.ReferenceCache.Get(ctx, kind)
	if err == nil && ok && !ref.Empty() {
		return ref, true, nil
	}
	if v, found := s.seed[kind]; found {
		return v, true, nil
	}
	return ref, ok, err
}
