// Package time contains clock and wait helpers shared by the poller and the scheduler
package time

import (
	"context"
	"time"
)

// Clock is the seam for wall-clock reads and one-shot timers
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, fn func()) Timer
}

// Timer is the subset of *time.Timer the scheduler needs
type Timer interface {
	Stop() bool
}

// System is the real clock
type System struct{}

// Now returns the local wall-clock time
func (System) Now() time.Time { return time.Now() }

// AfterFunc arms a real one-shot timer
func (System) AfterFunc(d time.Duration, fn func()) Timer { return time.AfterFunc(d, fn) }

// Sleep waits for d or until ctx ends, whichever comes first
// returns ctx.Err() when interrupted
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Ms returns d in whole milliseconds
func Ms(d time.Duration) int64 { return d.Milliseconds() }
