// Package service arms the fixed anchor timer and drives pipeline cycles
package service

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	perr "reportrelay/internal/platform/errors"
	"reportrelay/internal/platform/logger"
	ptime "reportrelay/internal/platform/time"
	reports "reportrelay/internal/services/reports/domain"
	"reportrelay/internal/services/scheduler/domain"
)

// Config carries the schedule defaults used until settings say otherwise
type Config struct {
	BaseHour       int
	IntervalHours  int
	DefaultEnabled bool
	LogTimeout     time.Duration
}

// Scheduler fires one cycle per anchor and never runs two at once
type Scheduler struct {
	runner   domain.CycleRunner
	settings reports.Settings
	outcomes reports.OutcomeRecorder
	clock    ptime.Clock
	cfg      Config

	busy    atomic.Bool
	fired   atomic.Int64
	skipped atomic.Int64

	mu       sync.Mutex
	life     context.Context
	enabled  bool
	interval int
	timer    ptime.Timer
	next     time.Time
	gen      uint64
	last     *domain.LastCycle

	newID func() string
}

var _ domain.SchedulePort = (*Scheduler)(nil)

// New builds a scheduler; outcomes may be nil
func New(runner domain.CycleRunner, settings reports.Settings, outcomes reports.OutcomeRecorder, clock ptime.Clock, cfg Config) *Scheduler {
	if runner == nil || settings == nil {
		panic("scheduler requires a cycle runner and a settings store")
	}
	if clock == nil {
		clock = ptime.System{}
	}
	if cfg.IntervalHours <= 0 || cfg.IntervalHours > 24 {
		cfg.IntervalHours = 4
	}
	if cfg.LogTimeout <= 0 {
		cfg.LogTimeout = 5 * time.Second
	}
	return &Scheduler{
		runner:   runner,
		settings: settings,
		outcomes: outcomes,
		clock:    clock,
		cfg:      cfg,
		life:     context.Background(),
		interval: cfg.IntervalHours,
		newID:    uuid.NewString,
	}
}

// Start loads the persisted schedule and arms the timer when enabled
// the timer is disarmed once ctx ends
func (s *Scheduler) Start(ctx context.Context) error {
	enabled, interval, err := s.load(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.life = ctx
	s.enabled = enabled
	s.interval = interval
	if enabled {
		s.armLocked()
	}
	s.mu.Unlock()

	context.AfterFunc(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.disarmLocked()
	})
	logger.Named("scheduler").Info().Bool("enabled", enabled).Int("interval_hours", interval).Msg("scheduler started")
	return nil
}

// SetAutoSchedule persists the flag and interval then re-arms or disarms
// intervalHours of zero keeps the current interval
func (s *Scheduler) SetAutoSchedule(ctx context.Context, enabled bool, intervalHours int) (domain.State, error) {
	if intervalHours < 0 || intervalHours > 24 {
		return domain.State{}, perr.WithField(perr.InvalidArgf("intervalHours must be between 1 and 24"), "intervalHours")
	}

	s.mu.Lock()
	if intervalHours == 0 {
		intervalHours = s.interval
	}
	s.mu.Unlock()

	if err := s.settings.PutSetting(ctx, domain.SettingAutoEnabled, strconv.FormatBool(enabled)); err != nil {
		return domain.State{}, err
	}
	if err := s.settings.PutSetting(ctx, domain.SettingIntervalHours, strconv.Itoa(intervalHours)); err != nil {
		return domain.State{}, err
	}

	s.mu.Lock()
	s.enabled = enabled
	s.interval = intervalHours
	if enabled {
		s.armLocked()
	} else {
		s.disarmLocked()
	}
	s.mu.Unlock()

	logger.C(ctx).Info().Bool("enabled", enabled).Int("interval_hours", intervalHours).Msg("auto schedule updated")
	return s.State(), nil
}

// RunNow runs a cycle immediately unless one is already running
func (s *Scheduler) RunNow(ctx context.Context) (reports.CycleReport, error) {
	return s.trigger(ctx, "manual", "")
}

// RunCycle runs a cycle for day behind the same busy gate as the timer
// an empty day means today
func (s *Scheduler) RunCycle(ctx context.Context, reason, day string) (reports.CycleReport, error) {
	return s.trigger(ctx, reason, day)
}

// State returns a snapshot
func (s *Scheduler) State() domain.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := domain.State{
		Enabled:       s.enabled,
		BaseHour:      s.cfg.BaseHour,
		IntervalHours: s.interval,
		Busy:          s.busy.Load(),
		Anchors:       Anchors(s.cfg.BaseHour, s.interval),
		Fired:         s.fired.Load(),
		Skipped:       s.skipped.Load(),
	}
	if s.timer != nil {
		next := s.next
		st.Next = &next
	}
	if s.last != nil {
		last := *s.last
		st.Last = &last
	}
	return st
}

func (s *Scheduler) load(ctx context.Context) (bool, int, error) {
	enabled := s.cfg.DefaultEnabled
	if v, ok, err := s.settings.GetSetting(ctx, domain.SettingAutoEnabled); err != nil {
		return false, 0, err
	} else if ok {
		if b, err := strconv.ParseBool(v); err == nil {
			enabled = b
		}
	}
	interval := s.cfg.IntervalHours
	if v, ok, err := s.settings.GetSetting(ctx, domain.SettingIntervalHours); err != nil {
		return false, 0, err
	} else if ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 24 {
			interval = n
		}
	}
	return enabled, interval, nil
}

// armLocked replaces any pending timer with one for the next anchor
func (s *Scheduler) armLocked() {
	s.disarmLocked()
	now := s.clock.Now()
	s.next = NextAnchor(now, s.cfg.BaseHour, s.interval)
	s.gen++
	gen := s.gen
	s.timer = s.clock.AfterFunc(s.next.Sub(now), func() { s.fire(gen) })
	logger.Named("scheduler").Debug().Time("next", s.next).Msg("armed")
}

func (s *Scheduler) disarmLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// fire runs one cycle then re-arms; a newer arm or a disarm since this timer was set wins
func (s *Scheduler) fire(gen uint64) {
	s.mu.Lock()
	ctx := s.life
	s.mu.Unlock()
	if ctx.Err() != nil {
		return
	}

	s.fired.Add(1)
	_, _ = s.trigger(ctx, "alarm", "")

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen == gen && s.enabled && s.life.Err() == nil {
		s.armLocked()
	}
}

// trigger is the only path into the runner; a trigger that finds it busy is dropped
func (s *Scheduler) trigger(ctx context.Context, reason, day string) (reports.CycleReport, error) {
	if !s.busy.CompareAndSwap(false, true) {
		s.skipped.Add(1)
		err := perr.Busyf("a cycle is already running")
		s.record(ctx, reports.RunOutcome{
			RunID:       s.newID(),
			Phase:       reports.PhaseCycle,
			Status:      reports.StatusSkip,
			ErrorKind:   perr.CodeOf(err).String(),
			ErrorDetail: err.Error(),
			Meta:        map[string]any{"reason": reason, "day": day},
			At:          s.clock.Now(),
		})
		logger.C(ctx).Info().Str("reason", reason).Str("day", day).Msg("cycle skipped, busy")
		return reports.CycleReport{}, err
	}
	defer s.busy.Store(false)

	rep := s.runner.RunCycle(ctx, reason, day)

	out := reports.RunOutcome{
		RunID:      rep.RunID,
		Phase:      reports.PhaseCycle,
		Status:     reports.StatusSuccess,
		DurationMs: rep.DurationMs,
		Meta:       map[string]any{"reason": reason, "day": rep.Day, "failed": rep.Failed()},
		At:         s.clock.Now(),
	}
	if rep.Failed() > 0 {
		out.Status = reports.StatusFail
	}
	s.record(ctx, out)

	s.mu.Lock()
	s.last = &domain.LastCycle{
		RunID:      rep.RunID,
		Reason:     reason,
		Day:        rep.Day,
		StartedAt:  rep.StartedAt,
		DurationMs: rep.DurationMs,
		Failed:     rep.Failed(),
	}
	s.mu.Unlock()
	return rep, nil
}

// record writes an outcome synchronously; failures are only logged
func (s *Scheduler) record(ctx context.Context, o reports.RunOutcome) {
	if s.outcomes == nil {
		return
	}
	lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.LogTimeout)
	defer cancel()
	if err := s.outcomes.Record(lctx, o); err != nil {
		logger.C(ctx).Debug().Err(err).Msg("scheduler outcome not recorded")
	}
}
