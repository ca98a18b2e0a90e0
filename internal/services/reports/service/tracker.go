package service

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"reportrelay/internal/core/tabular"
	perr "reportrelay/internal/platform/errors"
	"reportrelay/internal/platform/logger"
	ptime "reportrelay/internal/platform/time"
	"reportrelay/internal/services/reports/domain"
	"reportrelay/internal/services/reports/guardrails"
)

// ReadinessProbe is the slice of the report source the tracker needs
type ReadinessProbe interface {
	Readiness(ctx context.Context, ref domain.ReferenceID) (domain.Readiness, error)
}

// Tracker runs at most one readiness poll per reference and fans its result out to every waiter
type Tracker struct {
	probe    ReadinessProbe
	timeouts guardrails.Timeouts
	log      logger.Logger

	life context.Context
	stop context.CancelFunc

	jobs singleflight.Group

	polls    atomic.Int64
	started  atomic.Int64
	shared   atomic.Int64
	inFlight atomic.Int32

	now   func() time.Time
	sleep func(context.Context, time.Duration) error
}

// NewTracker builds a tracker whose polls live until Stop
func NewTracker(probe ReadinessProbe, t guardrails.Timeouts) *Tracker {
	life, stop := context.WithCancel(context.Background())
	return &Tracker{
		probe:    probe,
		timeouts: t,
		log:      *logger.Named("tracker"),
		life:     life,
		stop:     stop,
		now:      time.Now,
		sleep:    ptime.Sleep,
	}
}

// Stop cancels every running poll; waiters receive an unavailable error
func (t *Tracker) Stop() { t.stop() }

// Stats returns counters since start
func (t *Tracker) Stats() domain.TrackerStats {
	return domain.TrackerStats{
		Polls:    t.polls.Load(),
		InFlight: int(t.inFlight.Load()),
		Started:  t.started.Load(),
		Shared:   t.shared.Load(),
	}
}

// EnsureReady waits until ref is ready, polling every interval up to maxAttempts times
// concurrent callers for the same ref share one poll and get the same result
// a caller whose ctx ends stops waiting without cancelling the shared poll
func (t *Tracker) EnsureReady(ctx context.Context, ref domain.ReferenceID, interval time.Duration, maxAttempts int) (domain.Ready, error) {
	if ref.Empty() {
		return domain.Ready{}, perr.InvalidArgf("reference id is required")
	}
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	ch := t.jobs.DoChan(string(ref), func() (any, error) {
		t.started.Add(1)
		t.inFlight.Add(1)
		defer t.inFlight.Add(-1)
		return t.poll(ref, interval, maxAttempts)
	})

	select {
	case res := <-ch:
		if res.Shared {
			t.shared.Add(1)
		}
		if res.Err != nil {
			return domain.Ready{}, res.Err
		}
		ready := res.Val.(domain.Ready)
		ready.Shared = res.Shared
		return ready, nil
	case <-ctx.Done():
		return domain.Ready{}, perr.Wrapf(ctx.Err(), perr.ErrorCodeTimeout, "stopped waiting for report %s", ref)
	}
}

// poll runs on the tracker lifetime, never on a caller context
func (t *Tracker) poll(ref domain.ReferenceID, interval time.Duration, maxAttempts int) (domain.Ready, error) {
	log := t.log.With().Str("ref", ref.String()).Logger()
	start := t.now()

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		t.polls.Add(1)

		pctx, cancel := guardrails.ForPoll(t.life, t.timeouts)
		rd, err := t.probe.Readiness(pctx, ref)
		cancel()

		if err != nil {
			if t.life.Err() != nil {
				return domain.Ready{}, perr.Wrap(err, perr.ErrorCodeUnavailable, "tracker stopped")
			}
			if !perr.Retryable(err) {
				return domain.Ready{}, perr.Wrapf(err, perr.ErrorCodeRequestFailed, "readiness check for %s failed", ref)
			}
			log.Warn().Err(err).Int("attempt", attempt).Msg("readiness transport error counted as pending")
			rd = domain.Pending("TRANSPORT")
		}

		switch rd.State {
		case domain.StateReadyDirect:
			if recs := tabular.Decode(rd.Raw); len(recs) > 0 {
				el := t.now().Sub(start)
				log.Info().Int("attempt", attempt).Int("rows", len(recs)).Dur("elapsed", el).Msg("report ready inline")
				return domain.Ready{Raw: rd.Raw, Records: recs, Attempts: attempt, Elapsed: el}, nil
			}
			rd.Reason = domain.ReasonEmptyTabular
		case domain.StateReadyDocument:
			if rd.DocumentID != "" {
				el := t.now().Sub(start)
				log.Info().Int("attempt", attempt).Str("document_id", rd.DocumentID).Dur("elapsed", el).Msg("report document ready")
				return domain.Ready{DocumentID: rd.DocumentID, Attempts: attempt, Elapsed: el}, nil
			}
			rd.Reason = domain.ReasonNoDocumentID
		case domain.StateFailed:
			return domain.Ready{}, perr.Newf(perr.ErrorCodeRequestFailed, "report %s failed: %s", ref, rd.Reason)
		}

		log.Debug().Int("attempt", attempt).Int("max", maxAttempts).Str("reason", rd.Reason).Msg("report pending")

		if attempt < maxAttempts {
			if err := t.sleep(t.life, interval); err != nil {
				return domain.Ready{}, perr.Wrap(err, perr.ErrorCodeUnavailable, "tracker stopped")
			}
		}
	}

	el := t.now().Sub(start)
	log.Warn().Int("attempts", maxAttempts).Dur("elapsed", el).Msg("report not ready, giving up")
	return domain.Ready{}, domain.NewTimeout(ref, maxAttempts, el)
}
