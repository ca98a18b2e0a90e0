package pg

import (
	"context"
	"strings"

	"reportrelay/internal/platform/logger"
	pstrings "reportrelay/internal/platform/strings"

	"github.com/rs/zerolog"
)

// QueryEvent describes one executed statement
type QueryEvent struct {
	SQL       string
	Args      any
	ElapsedUS int64
	Err       error
	Slow      bool
}

// QueryTracer receives every statement the store runs
type QueryTracer interface {
	OnQuery(ctx context.Context, ev QueryEvent)
}

// Tracer returns a tracer that prints SQL regardless of the root level
// args are left out since they carry report payloads and csrf tokens
func Tracer(root logger.Logger) QueryTracer {
	ll := root.Level(zerolog.DebugLevel).With().Str("component", "pg").Logger()
	return &zlTracer{log: ll}
}

type zlTracer struct{ log logger.Logger }

func (z *zlTracer) OnQuery(ctx context.Context, ev QueryEvent) {
	evt := z.log.Debug()
	switch {
	case ev.Err != nil:
		evt = z.log.Error()
	case ev.Slow:
		evt = z.log.Warn()
	}
	evt.Float64("elapsed_ms", float64(ev.ElapsedUS)/1000.0).
		Bool("slow", ev.Slow).
		Str("sql", pstrings.Snippet(compact(ev.SQL), 400)).
		Err(ev.Err).
		Msg("pg query")
}

// compact folds whitespace runs into single spaces
func compact(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
