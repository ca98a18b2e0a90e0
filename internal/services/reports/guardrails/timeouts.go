// Package guardrails holds per call time budgets for the report pipeline
package guardrails

import (
	"context"
	"time"
)

// Timeouts caps each network call a run makes
// Zero values mean no extra timeout at that level
type Timeouts struct {
	// Request caps asking for a new report reference
	Request time.Duration

	// Poll caps a single readiness probe
	Poll time.Duration

	// Download caps fetching a generated document
	Download time.Duration

	// Page caps one page of the paged spend report
	Page time.Duration

	// Upload caps one sink upload
	Upload time.Duration

	// Log caps recording a run outcome
	Log time.Duration
}

// Defaults returns the stock budgets
func Defaults() Timeouts {
	return Timeouts{
		Request:  30 * time.Second,
		Poll:     20 * time.Second,
		Download: 60 * time.Second,
		Page:     30 * time.Second,
		Upload:   60 * time.Second,
		Log:      5 * time.Second,
	}
}

// ForRequest bounds the reference request
func ForRequest(parent context.Context, t Timeouts) (context.Context, context.CancelFunc) {
	return withChildTimeout(parent, t.Request)
}

// ForPoll bounds one readiness probe
func ForPoll(parent context.Context, t Timeouts) (context.Context, context.CancelFunc) {
	return withChildTimeout(parent, t.Poll)
}

// ForDownload bounds the document download
func ForDownload(parent context.Context, t Timeouts) (context.Context, context.CancelFunc) {
	return withChildTimeout(parent, t.Download)
}

// ForPage bounds one spend page
func ForPage(parent context.Context, t Timeouts) (context.Context, context.CancelFunc) {
	return withChildTimeout(parent, t.Page)
}

// ForUpload bounds the sink upload
func ForUpload(parent context.Context, t Timeouts) (context.Context, context.CancelFunc) {
	return withChildTimeout(parent, t.Upload)
}

// ForLog bounds outcome recording
func ForLog(parent context.Context, t Timeouts) (context.Context, context.CancelFunc) {
	return withChildTimeout(parent, t.Log)
}

// Remaining returns the time until the deadline on ctx or zero when none is set or already expired
func Remaining(ctx context.Context) time.Duration {
	if dl, ok := ctx.Deadline(); ok {
		d := time.Until(dl)
		if d > 0 {
			return d
		}
	}
	return 0
}

// withChildTimeout chooses the tighter of the requested duration and any parent remainder
// Never extends the parent deadline
func withChildTimeout(parent context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(parent)
	}
	if rem := Remaining(parent); rem > 0 && rem < d {
		return context.WithTimeout(parent, rem)
	}
	return context.WithTimeout(parent, d)
}
