// Package domain defines report kinds, readiness states and delivery results
package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"reportrelay/internal/core/tabular"
	perr "reportrelay/internal/platform/errors"
)

// Kind names a report family
type Kind string

// Known report kinds
const (
	KindNewOrders Kind = "NEW_ORDERS"
	KindAllOrders Kind = "ALL_ORDERS"
	KindAdSpend   Kind = "AD_SPEND"
)

// Kinds lists every kind in cycle order
var Kinds = []Kind{KindNewOrders, KindAllOrders, KindAdSpend}

// ParseKind accepts a kind name or its phase name, case insensitive
func ParseKind(s string) (Kind, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(KindNewOrders), "IMPORT", "NEW":
		return KindNewOrders, nil
	case string(KindAllOrders), "REPORT", "ALL":
		return KindAllOrders, nil
	case string(KindAdSpend), "ADS":
		return KindAdSpend, nil
	}
	return "", perr.InvalidArgf("unknown report kind %q", s)
}

// Phase returns the outcome phase a kind reports under
func (k Kind) Phase() Phase {
	switch k {
	case KindNewOrders:
		return PhaseImport
	case KindAllOrders:
		return PhaseReport
	case KindAdSpend:
		return PhaseAds
	}
	return Phase(strings.ToLower(string(k)))
}

// Polled reports whether the kind goes through request and readiness polling
func (k Kind) Polled() bool { return k == KindNewOrders || k == KindAllOrders }

// Phase labels a run outcome
type Phase string

// Outcome phases
const (
	PhaseImport Phase = "import"
	PhaseReport Phase = "report"
	PhaseAds    Phase = "ads"
	PhaseCycle  Phase = "cycle"
)

// Status is the terminal state of one run
type Status string

// Outcome statuses
const (
	StatusSuccess Status = "success"
	StatusFail    Status = "fail"
	StatusSkip    Status = "skip"
)

// ReferenceID identifies one requested report generation
type ReferenceID string

// String returns the raw id
func (r ReferenceID) String() string { return string(r) }

// Empty reports whether the id is blank
func (r ReferenceID) Empty() bool { return strings.TrimSpace(string(r)) == "" }

// ReportRequest is issued once per kind and never mutated
type ReportRequest struct {
	Kind   Kind
	Params map[string]any
}

// ReadyState tags a readiness probe result
type ReadyState int

// Readiness states
const (
	StatePending ReadyState = iota
	StateReadyDirect
	StateReadyDocument
	StateFailed
)

func (s ReadyState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateReadyDirect:
		return "ready_direct"
	case StateReadyDocument:
		return "ready_document"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("state_%d", int(s))
}

// Pending reasons reported by the readiness probe
const (
	ReasonRedirect     = "PENDING_REDIRECT"
	ReasonEmptyTabular = "EMPTY_TSV"
	ReasonNonJSON      = "PENDING_NON_JSON"
	ReasonNoDocumentID = "NO_DOCUMENT_ID_YET"
)

// Readiness is one answer from the readiness endpoint
type Readiness struct {
	State      ReadyState
	Raw        string
	DocumentID string
	Reason     string
}

// Pending builds a not yet ready answer
func Pending(reason string) Readiness { return Readiness{State: StatePending, Reason: reason} }

// ReadyDirect builds an answer carrying the report content inline
func ReadyDirect(raw string) Readiness { return Readiness{State: StateReadyDirect, Raw: raw} }

// ReadyDocument builds an answer pointing at a downloadable document
func ReadyDocument(id string) Readiness { return Readiness{State: StateReadyDocument, DocumentID: id} }

// Failed builds a terminal failure answer
func Failed(reason string) Readiness { return Readiness{State: StateFailed, Reason: reason} }

// Ready is the resolved result of polling one reference
type Ready struct {
	Raw        string
	Records    []tabular.Record
	DocumentID string
	Attempts   int
	Elapsed    time.Duration

	// Shared is true when the caller attached to a poll another caller started
	Shared bool
}

// Direct reports whether content arrived inline
func (r Ready) Direct() bool { return r.DocumentID == "" }

// TimeoutError is returned to every waiter when polling runs out of attempts
type TimeoutError struct {
	Ref      ReferenceID
	Attempts int
	Elapsed  time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("report %s not ready after %d attempts (%s)", e.Ref, e.Attempts, e.Elapsed.Round(time.Millisecond))
}

// NewTimeout wraps a TimeoutError with the timeout code
func NewTimeout(ref ReferenceID, attempts int, elapsed time.Duration) error {
	te := &TimeoutError{Ref: ref, Attempts: attempts, Elapsed: elapsed}
	return perr.Wrap(te, perr.ErrorCodeTimeout, "readiness polling exhausted")
}

// CampaignSpendRow is one campaign's spend for a day
type CampaignSpendRow struct {
	CampaignName string          `json:"campaignName"`
	Date         string          `json:"date"`
	Spend        decimal.Decimal `json:"spend"`
}

// Page is one slice of a paginated report
type Page[T any] struct {
	Total int
	Rows  []T
}

// Override pins a run to a known reference or day
type Override struct {
	Reference ReferenceID `json:"referenceId,omitempty"`
	Date      string      `json:"date,omitempty"`
}

// Upload is one file handed to the ingestion sink
type Upload struct {
	Kind     Kind
	FileName string
	Content  string
	Fields   map[string]string
}

// SinkResult is what the sink answered
// Body is set for JSON answers, Raw otherwise
type SinkResult struct {
	OK   bool           `json:"ok"`
	Raw  string         `json:"raw,omitempty"`
	Body map[string]any `json:"body,omitempty"`
}

// Status reports the short backend state recorded in success logs
func (s SinkResult) Status() string {
	if v, ok := s.Body["ok"].(bool); ok && !v {
		return "unknown"
	}
	return "ok"
}

// Result is what one successful pipeline run produced
type Result struct {
	Kind        Kind        `json:"kind"`
	Rows        int         `json:"rows"`
	ReferenceID ReferenceID `json:"referenceId,omitempty"`
	DocumentID  string      `json:"documentId,omitempty"`
	Day         string      `json:"day,omitempty"`
	FileName    string      `json:"fileName"`
	Archived    string      `json:"archived,omitempty"`
	Sink        SinkResult  `json:"sink"`
	RunID       string      `json:"runId"`
}

// RunOutcome is the log record of one run
type RunOutcome struct {
	RunID       string         `json:"runId"`
	Phase       Phase          `json:"phase"`
	Status      Status         `json:"status"`
	DurationMs  int64          `json:"durationMs"`
	ErrorKind   string         `json:"errorKind,omitempty"`
	ErrorDetail string         `json:"errorDetail,omitempty"`
	Meta        map[string]any `json:"meta,omitempty"`
	At          time.Time      `json:"ts"`
}

// KindReport is one kind's line in a cycle report
type KindReport struct {
	Kind    Kind       `json:"kind"`
	Outcome RunOutcome `json:"outcome"`
	Result  *Result    `json:"result,omitempty"`
	Err     error      `json:"-"`
}

// CycleReport is the combined result of one full cycle
type CycleReport struct {
	RunID      string       `json:"runId"`
	Reason     string       `json:"reason"`
	Day        string       `json:"day"`
	StartedAt  time.Time    `json:"startedAt"`
	DurationMs int64        `json:"durationMs"`
	Kinds      []KindReport `json:"kinds"`
}

// Failed returns how many kinds did not succeed
func (c CycleReport) Failed() int {
	n := 0
	for _, k := range c.Kinds {
		if k.Outcome.Status != StatusSuccess {
			n++
		}
	}
	return n
}

// Identity is this relay's stable client identity
type Identity struct {
	ClientID string `json:"clientId"`
	Label    string `json:"label"`
}

// Registration is sent to the sink when the relay connects
type Registration struct {
	ClientID    string    `json:"clientId"`
	Label       string    `json:"label"`
	ShopID      string    `json:"shopId,omitempty"`
	Version     string    `json:"version"`
	UserAgent   string    `json:"ua"`
	AutoEnabled bool      `json:"autoEnabled"`
	ConnectedAt time.Time `json:"connectedAt"`
}
