package service

import (
	"context"
	"errors"
	"sync"

	perr "reportrelay/internal/platform/errors"
	"reportrelay/internal/services/reports/domain"
)

// scriptProbe answers readiness from a per ref script; the last entry repeats
type scriptProbe struct {
	mu     sync.Mutex
	script map[domain.ReferenceID][]probeStep
	calls  map[domain.ReferenceID]int
	gate   chan struct{}
}

type probeStep struct {
	rd  domain.Readiness
	err error
}

func newProbe() *scriptProbe {
	return &scriptProbe{script: map[domain.ReferenceID][]probeStep{}, calls: map[domain.ReferenceID]int{}}
}

func (p *scriptProbe) on(ref domain.ReferenceID, steps ...probeStep) *scriptProbe {
	p.mu.Lock()
	p.script[ref] = steps
	p.mu.Unlock()
	return p
}

func (p *scriptProbe) Readiness(ctx context.Context, ref domain.ReferenceID) (domain.Readiness, error) {
	p.mu.Lock()
	n := p.calls[ref]
	p.calls[ref] = n + 1
	steps := p.script[ref]
	gate := p.gate
	p.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return domain.Readiness{}, ctx.Err()
		}
	}
	if len(steps) == 0 {
		return domain.Pending(domain.ReasonNonJSON), nil
	}
	s := steps[min(n, len(steps)-1)]
	return s.rd, s.err
}

func (p *scriptProbe) count(ref domain.ReferenceID) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[ref]
}

func pending(n int, reason string) []probeStep {
	out := make([]probeStep, n)
	for i := range out {
		out[i] = probeStep{rd: domain.Pending(reason)}
	}
	return out
}

// fakeSource is a full report source backed by a probe
type fakeSource struct {
	*scriptProbe

	mu        sync.Mutex
	requested []domain.Kind
	refs      map[domain.Kind]domain.ReferenceID
	reqErr    error
	docs      map[string]string
	dlErr     error
}

func newSource() *fakeSource {
	return &fakeSource{scriptProbe: newProbe(), refs: map[domain.Kind]domain.ReferenceID{}, docs: map[string]string{}}
}

func (f *fakeSource) RequestReport(_ context.Context, req domain.ReportRequest) (domain.ReferenceID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requested = append(f.requested, req.Kind)
	if f.reqErr != nil {
		return "", f.reqErr
	}
	return f.refs[req.Kind], nil
}

func (f *fakeSource) Download(_ context.Context, id string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.dlErr != nil {
		return "", f.dlErr
	}
	raw, ok := f.docs[id]
	if !ok {
		return "", perr.Newf(perr.ErrorCodeDownload, "Amazon download 404")
	}
	return raw, nil
}

func (f *fakeSource) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requested)
}

// fakeSpend serves campaign rows in pages
type fakeSpend struct {
	mu      sync.Mutex
	total   int
	rows    []domain.CampaignSpendRow
	offsets []int
	err     error
}

func (f *fakeSpend) SpendPage(_ context.Context, day string, offset, size int) (domain.Page[domain.CampaignSpendRow], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.offsets = append(f.offsets, offset)
	if f.err != nil {
		return domain.Page[domain.CampaignSpendRow]{}, f.err
	}
	end := min(offset+size, len(f.rows))
	var rows []domain.CampaignSpendRow
	if offset < end {
		rows = f.rows[offset:end]
	}
	return domain.Page[domain.CampaignSpendRow]{Total: f.total, Rows: rows}, nil
}

// fakeSink records uploads
type fakeSink struct {
	mu      sync.Mutex
	uploads []domain.Upload
	fail    map[domain.Kind]error
}

func (f *fakeSink) Upload(_ context.Context, u domain.Upload) (domain.SinkResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail[u.Kind]; err != nil {
		return domain.SinkResult{}, err
	}
	f.uploads = append(f.uploads, u)
	return domain.SinkResult{OK: true, Body: map[string]any{"ok": true}}, nil
}

func (f *fakeSink) byKind(k domain.Kind) (domain.Upload, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.uploads {
		if u.Kind == k {
			return u, true
		}
	}
	return domain.Upload{}, false
}

// memRefs is an in memory reference cache
type memRefs struct {
	mu   sync.Mutex
	refs map[domain.Kind]domain.ReferenceID
}

func newRefs() *memRefs { return &memRefs{refs: map[domain.Kind]domain.ReferenceID{}} }

func (m *memRefs) Get(_ context.Context, k domain.Kind) (domain.ReferenceID, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.refs[k]
	return r, ok, nil
}

func (m *memRefs) Put(_ context.Context, k domain.Kind, r domain.ReferenceID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refs[k] = r
	return nil
}

// outcomeLog collects recorded outcomes
type outcomeLog struct {
	mu   sync.Mutex
	outs []domain.RunOutcome
	err  error
}

func (o *outcomeLog) Record(_ context.Context, out domain.RunOutcome) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outs = append(o.outs, out)
	return o.err
}

func (o *outcomeLog) all() []domain.RunOutcome {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]domain.RunOutcome(nil), o.outs...)
}

// memArchive keeps archived content by key
type memArchive struct {
	mu   sync.Mutex
	keys []string
}

func (m *memArchive) Put(_ context.Context, key, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys = append(m.keys, key)
	return "mem://" + key, nil
}

// memSettings is an in memory settings store
type memSettings struct {
	mu   sync.Mutex
	kv   map[string]string
	puts int
	err  error
}

func (m *memSettings) GetSetting(_ context.Context, k string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", false, m.err
	}
	v, ok := m.kv[k]
	return v, ok, nil
}

func (m *memSettings) PutSetting(_ context.Context, k, v string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.kv == nil {
		m.kv = map[string]string{}
	}
	m.kv[k] = v
	m.puts++
	return nil
}

var errBoom = errors.New("boom")

const threeRows = "order-id\tsku\n1\ta\n2\tb\n3\tc\n"
