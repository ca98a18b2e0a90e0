// Package modkit provides module wiring and core deps
package modkit

import (
	"reportrelay/internal/platform/config"
	"reportrelay/internal/platform/logger"
	"reportrelay/internal/platform/store"
	ptime "reportrelay/internal/platform/time"
)

// Deps holds what every relay module is built from
// PG and CH are nil when the backend is not configured; modules fall back or skip
type Deps struct {
	Log   logger.Logger
	Cfg   config.Conf
	PG    store.TxRunner
	CH    store.Clickhouse
	Clock ptime.Clock
}

// ClockOrSystem returns the injected clock or the wall clock
func (d Deps) ClockOrSystem() ptime.Clock {
	if d.Clock != nil {
		return d.Clock
	}
	return ptime.System{}
}
