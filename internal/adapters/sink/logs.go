package sink

import (
	"context"
	"encoding/json"
	"net/http"

	"reportrelay/internal/adapters/upstream"
	perr "reportrelay/internal/platform/errors"
	"reportrelay/internal/services/reports/domain"
)

// Logs posts run outcomes to the backend log collector
type Logs struct {
	c   *Client
	ids domain.IdentityPort
}

var _ domain.OutcomeRecorder = (*Logs)(nil)

// NewLogs builds an outcome recorder over the sink client
func NewLogs(c *Client, ids domain.IdentityPort) *Logs { return &Logs{c: c, ids: ids} }

type logWire struct {
	TS          int64          `json:"ts"`
	Phase       string         `json:"phase"`
	Status      string         `json:"status"`
	ClientID    string         `json:"clientId"`
	Label       string         `json:"label"`
	RunID       string         `json:"runId,omitempty"`
	DurationMs  int64          `json:"durationMs"`
	ErrorKind   string         `json:"errorKind,omitempty"`
	ErrorDetail string         `json:"errorDetail,omitempty"`
	Meta        map[string]any `json:"meta"`
}

// Record posts one outcome; callers are expected to ignore the error
func (l *Logs) Record(ctx context.Context, o domain.RunOutcome) error {
	id, err := l.ids.Identity(ctx)
	if err != nil {
		return err
	}
	meta := o.Meta
	if meta == nil {
		meta = map[string]any{}
	}
	body, err := json.Marshal(logWire{
		TS:          o.At.UnixMilli(),
		Phase:       string(o.Phase),
		Status:      string(o.Status),
		ClientID:    id.ClientID,
		Label:       id.Label,
		RunID:       o.RunID,
		DurationMs:  o.DurationMs,
		ErrorKind:   o.ErrorKind,
		ErrorDetail: o.ErrorDetail,
		Meta:        meta,
	})
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeJSON, "encode run log")
	}
	resp, err := l.c.up.Do(ctx, upstream.Request{
		Method:      http.MethodPost,
		Path:        l.c.urls.LogCollect,
		Body:        body,
		ContentType: "application/json",
	})
	if err != nil {
		return err
	}
	_ = upstream.DrainAndClose(resp.Body)
	if !upstream.OK(resp.StatusCode) {
		return perr.Newf(perr.ErrorCodeSink, "log collect %d", resp.StatusCode)
	}
	return nil
}
