package domain

import "context"

// ReportSource is the remote report service for order reports
type ReportSource interface {
	// RequestReport asks for a new report generation and returns its reference
	RequestReport(ctx context.Context, req ReportRequest) (ReferenceID, error)
	// Readiness probes one reference once
	Readiness(ctx context.Context, ref ReferenceID) (Readiness, error)
	// Download fetches a generated document as raw text
	Download(ctx context.Context, documentID string) (string, error)
}

// SpendSource is the paged advertising report API
type SpendSource interface {
	SpendPage(ctx context.Context, day string, offset, size int) (Page[CampaignSpendRow], error)
}

// Sink is the downstream ingestion backend
type Sink interface {
	Upload(ctx context.Context, u Upload) (SinkResult, error)
}

// Registrar registers this client with the ingestion backend
type Registrar interface {
	Connect(ctx context.Context, reg Registration) (SinkResult, error)
}

// ReferenceCache remembers the last usable reference per kind
type ReferenceCache interface {
	Get(ctx context.Context, kind Kind) (ReferenceID, bool, error)
	Put(ctx context.Context, kind Kind, ref ReferenceID) error
}

// Settings is a small persistent key/value store for identity and scheduler flags
type Settings interface {
	GetSetting(ctx context.Context, key string) (string, bool, error)
	PutSetting(ctx context.Context, key, value string) error
}

// OutcomeRecorder stores run outcomes; callers never wait on it
type OutcomeRecorder interface {
	Record(ctx context.Context, o RunOutcome) error
}

// Archive keeps a copy of every delivered file
type Archive interface {
	Put(ctx context.Context, key, content string) (string, error)
}

// RunnerPort runs single kinds and whole cycles
type RunnerPort interface {
	Run(ctx context.Context, kind Kind, o Override) (Result, error)
	RunCycle(ctx context.Context, reason, day string) CycleReport
}

// ConnectorPort registers the relay with the sink
type ConnectorPort interface {
	Connect(ctx context.Context, autoEnabled bool) (Registration, SinkResult, error)
}

// IdentityPort exposes the stable client identity
type IdentityPort interface {
	Identity(ctx context.Context) (Identity, error)
}

// TrackerPort exposes readiness polling stats
type TrackerPort interface {
	Stats() TrackerStats
}

// TrackerStats counts tracker work since start
type TrackerStats struct {
	Polls    int64 `json:"polls"`
	InFlight int   `json:"inFlight"`
	Started  int64 `json:"started"`
	Shared   int64 `json:"shared"`
}

// HistoryPort lists recorded outcomes, newest first
type HistoryPort interface {
	Recent(ctx context.Context, phase Phase, limit int) ([]RunOutcome, error)
}
