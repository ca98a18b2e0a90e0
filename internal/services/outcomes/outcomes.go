// Package outcomes records run outcomes to every configured destination
package outcomes

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"reportrelay/internal/platform/logger"
	"reportrelay/internal/services/reports/domain"
)

// Fanout records one outcome to each member; a failing member does not stop the rest
type Fanout []domain.OutcomeRecorder

var _ domain.OutcomeRecorder = Fanout(nil)

// NewFanout drops nil members
func NewFanout(rs ...domain.OutcomeRecorder) Fanout {
	out := make(Fanout, 0, len(rs))
	for _, r := range rs {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

// Record implements domain.OutcomeRecorder
func (f Fanout) Record(ctx context.Context, o domain.RunOutcome) error {
	var errs []error
	for _, r := range f {
		if err := r.Record(ctx, o); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Logged writes outcomes as structured log lines
type Logged struct{ log *logger.Logger }

var _ domain.OutcomeRecorder = (*Logged)(nil)

// NewLogged uses the outcomes component logger when l is nil
func NewLogged(l *logger.Logger) *Logged {
	if l == nil {
		l = logger.Named("outcomes")
	}
	return &Logged{log: l}
}

// Record implements domain.OutcomeRecorder
func (l *Logged) Record(_ context.Context, o domain.RunOutcome) error {
	var ev *zerolog.Event
	switch o.Status {
	case domain.StatusFail:
		ev = l.log.Warn().Str("error_kind", o.ErrorKind).Str("error_detail", o.ErrorDetail)
	case domain.StatusSkip:
		ev = l.log.Info().Str("error_kind", o.ErrorKind)
	default:
		ev = l.log.Info()
	}
	ev.Str("run_id", o.RunID).
		Str("phase", string(o.Phase)).
		Str("status", string(o.Status)).
		Int64("duration_ms", o.DurationMs).
		Fields(o.Meta).
		Msg("run outcome")
	return nil
}
