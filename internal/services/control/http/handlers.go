// Package http provides the control api transport
package http

import (
	stdhttp "net/http"
	"strconv"
	"strings"

	"reportrelay/internal/core/version"
	perr "reportrelay/internal/platform/errors"
	phttp "reportrelay/internal/platform/net/http"
	"reportrelay/internal/services/control/domain"
	reports "reportrelay/internal/services/reports/domain"
)

const (
	defaultOutcomes = 50
	maxOutcomes     = 500
)

// Register mounts the control routes
func Register(r phttp.Router, p domain.Ports) {
	h := &handlers{p: p}
	phttp.GetJSON(r, "/ping", h.ping)

	phttp.PostJSON[domain.RunInput](r, "/runs/import", h.runImport)
	phttp.PostJSON[domain.RunInput](r, "/runs/report", h.runReport)
	phttp.PostJSON[domain.AdsInput](r, "/runs/ads", h.runAds)
	phttp.PostJSON[domain.CycleInput](r, "/runs/cycle", h.runCycle)

	phttp.GetJSON(r, "/schedule", h.schedule)
	phttp.PutJSON[domain.ScheduleInput](r, "/schedule", h.setSchedule)
	phttp.PostJSON[struct{}](r, "/schedule/run-now", h.runNow)

	phttp.PostJSON[domain.ConnectInput](r, "/connect", h.connect)
	phttp.GetJSON(r, "/outcomes", h.outcomes)
	phttp.GetJSON(r, "/stats", h.stats)
}

type handlers struct{ p domain.Ports }

// @Summary Ping
// @Tags control
// @Produce json
// @Success 200 {object} domain.PingOutput "ok"
// @Router /ping [get]
func (h *handlers) ping(_ *stdhttp.Request) (any, error) {
	return domain.PingOutput{OK: true, Service: version.Info().Service, Version: version.ClientVersion()}, nil
}

// @Summary Import new orders
// @Tags runs
// @Accept json
// @Produce json
// @Param payload body domain.RunInput false "Optional reference"
// @Success 200 {object} reports.Result "delivered"
// @Failure 502 {object} phttp.Envelope "upstream failed"
// @Failure 504 {object} phttp.Envelope "report not ready in time"
// @Router /runs/import [post]
func (h *handlers) runImport(r *stdhttp.Request, in domain.RunInput) (any, error) {
	return h.p.Runner.Run(r.Context(), reports.KindNewOrders, reports.Override{Reference: reports.ReferenceID(strings.TrimSpace(in.ReferenceID))})
}

// @Summary Deliver the all orders report
// @Tags runs
// @Accept json
// @Produce json
// @Param payload body domain.RunInput false "Optional reference"
// @Success 200 {object} reports.Result "delivered"
// @Router /runs/report [post]
func (h *handlers) runReport(r *stdhttp.Request, in domain.RunInput) (any, error) {
	return h.p.Runner.Run(r.Context(), reports.KindAllOrders, reports.Override{Reference: reports.ReferenceID(strings.TrimSpace(in.ReferenceID))})
}

// @Summary Export campaign spend for one day
// @Tags runs
// @Accept json
// @Produce json
// @Param payload body domain.AdsInput true "Day"
// @Success 200 {object} reports.Result "delivered"
// @Router /runs/ads [post]
func (h *handlers) runAds(r *stdhttp.Request, in domain.AdsInput) (any, error) {
	return h.p.Runner.Run(r.Context(), reports.KindAdSpend, reports.Override{Date: in.Date})
}

// @Summary Run every kind once
// @Tags runs
// @Accept json
// @Produce json
// @Param payload body domain.CycleInput false "Optional spend day"
// @Success 200 {object} reports.CycleReport "finished"
// @Failure 409 {object} phttp.Envelope "a cycle is already running"
// @Router /runs/cycle [post]
func (h *handlers) runCycle(r *stdhttp.Request, in domain.CycleInput) (any, error) {
	return h.p.Scheduler.RunCycle(r.Context(), "manual", in.Date)
}

// @Summary Schedule state
// @Tags schedule
// @Produce json
// @Success 200 {object} sched.State "ok"
// @Router /schedule [get]
func (h *handlers) schedule(_ *stdhttp.Request) (any, error) {
	return h.p.Scheduler.State(), nil
}

// @Summary Enable or disable the fixed anchor schedule
// @Tags schedule
// @Accept json
// @Produce json
// @Param payload body domain.ScheduleInput true "Schedule"
// @Success 200 {object} sched.State "ok"
// @Router /schedule [put]
func (h *handlers) setSchedule(r *stdhttp.Request, in domain.ScheduleInput) (any, error) {
	return h.p.Scheduler.SetAutoSchedule(r.Context(), *in.Enabled, in.IntervalHours)
}

// @Summary Run a cycle now
// @Tags schedule
// @Produce json
// @Success 200 {object} reports.CycleReport "finished"
// @Failure 409 {object} phttp.Envelope "a cycle is already running"
// @Router /schedule/run-now [post]
func (h *handlers) runNow(r *stdhttp.Request, _ struct{}) (any, error) {
	return h.p.Scheduler.RunNow(r.Context())
}

// @Summary Register this relay with the backend
// @Tags control
// @Accept json
// @Produce json
// @Param payload body domain.ConnectInput false "Auto flag"
// @Success 200 {object} domain.ConnectOutput "registered"
// @Router /connect [post]
func (h *handlers) connect(r *stdhttp.Request, in domain.ConnectInput) (any, error) {
	if h.p.Connector == nil {
		return nil, perr.Unavailablef("backend registration is not configured")
	}
	auto := h.p.Scheduler.State().Enabled
	if in.AutoEnabled != nil {
		auto = *in.AutoEnabled
	}
	reg, res, err := h.p.Connector.Connect(r.Context(), auto)
	if err != nil {
		return nil, err
	}
	return domain.ConnectOutput{Registration: reg, Backend: res}, nil
}

// @Summary Recent run outcomes
// @Tags control
// @Produce json
// @Param phase query string false "import, report, ads or cycle"
// @Param limit query int false "at most 500"
// @Success 200 {object} domain.OutcomesOutput "ok"
// @Router /outcomes [get]
func (h *handlers) outcomes(r *stdhttp.Request) (any, error) {
	if h.p.History == nil {
		return domain.OutcomesOutput{Items: []reports.RunOutcome{}}, nil
	}
	q := r.URL.Query()

	var phase reports.Phase
	switch v := reports.Phase(strings.ToLower(q.Get("phase"))); v {
	case "", reports.PhaseImport, reports.PhaseReport, reports.PhaseAds, reports.PhaseCycle:
		phase = v
	default:
		return nil, perr.WithField(perr.InvalidArgf("unknown phase %q", v), "phase")
	}

	limit := defaultOutcomes
	if s := q.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			return nil, perr.WithField(perr.InvalidArgf("limit must be a positive integer"), "limit")
		}
		limit = min(n, maxOutcomes)
	}

	items, err := h.p.History.Recent(r.Context(), phase, limit)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []reports.RunOutcome{}
	}
	return domain.OutcomesOutput{Items: items}, nil
}

// @Summary Polling counters and schedule
// @Tags control
// @Produce json
// @Success 200 {object} domain.StatsOutput "ok"
// @Router /stats [get]
func (h *handlers) stats(_ *stdhttp.Request) (any, error) {
	out := domain.StatsOutput{Schedule: h.p.Scheduler.State()}
	if h.p.Tracker != nil {
		out.Tracker = h.p.Tracker.Stats()
	}
	return out, nil
}
