// Package service runs report acquisition and delivery
package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"reportrelay/internal/platform/logger"
	"reportrelay/internal/services/reports/domain"
	"reportrelay/internal/services/reports/guardrails"
)

// Config carries runtime knobs for the pipeline
type Config struct {
	ShopID       string
	PollInterval time.Duration
	PollAttempts int
	PageSize     int
	Timeouts     guardrails.Timeouts
	ArchiveOn    bool
}

// Deps are the collaborators a pipeline talks to
// Archive and Outcomes may be nil
type Deps struct {
	Reports  domain.ReportSource
	Spend    domain.SpendSource
	Sink     domain.Sink
	Refs     domain.ReferenceCache
	Outcomes domain.OutcomeRecorder
	Archive  domain.Archive
}

// Svc implements the delivery pipeline
type Svc struct {
	deps    Deps
	config  Config
	tracker *Tracker
	log     logger.Logger

	pending sync.WaitGroup

	now   func() time.Time
	newID func() string
}

// New constructs the pipeline service
func New(d Deps, cfg Config) *Svc {
	if d.Reports == nil || d.Spend == nil || d.Sink == nil || d.Refs == nil {
		panic("reports.Service requires report source, spend source, sink and reference cache")
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 10 * time.Second
	}
	if cfg.PollAttempts <= 0 {
		cfg.PollAttempts = 5
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = MaxPageSize
	}
	return &Svc{
		deps:    d,
		config:  cfg,
		tracker: NewTracker(d.Reports, cfg.Timeouts),
		log:     *logger.Named("pipeline"),
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// Tracker exposes the readiness tracker
func (s *Svc) Tracker() *Tracker { return s.tracker }

// Stats returns tracker counters
func (s *Svc) Stats() domain.TrackerStats { return s.tracker.Stats() }

// Flush waits for outcome records still being written
func (s *Svc) Flush(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.pending.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the tracker and waits briefly for outcome writes
func (s *Svc) Close() {
	s.tracker.Stop()
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Timeouts.Log+time.Second)
	defer cancel()
	_ = s.Flush(ctx)
}
