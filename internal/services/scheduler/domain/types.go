// Package domain holds scheduler types and ports
package domain

import (
	"context"
	"time"

	reports "reportrelay/internal/services/reports/domain"
)

// Settings keys the scheduler persists
const (
	SettingAutoEnabled   = "auto_enabled"
	SettingIntervalHours = "auto_interval_hours"
)

// State is a snapshot of the scheduler
type State struct {
	Enabled       bool       `json:"enabled"`
	BaseHour      int        `json:"baseHour"`
	IntervalHours int        `json:"intervalHours"`
	Busy          bool       `json:"busy"`
	Next          *time.Time `json:"next,omitempty"`
	Anchors       []string   `json:"anchors"`
	Fired         int64      `json:"fired"`
	Skipped       int64      `json:"skipped"`

	Last *LastCycle `json:"last,omitempty"`
}

// LastCycle summarizes the most recent finished cycle
type LastCycle struct {
	RunID      string    `json:"runId"`
	Reason     string    `json:"reason"`
	Day        string    `json:"day"`
	StartedAt  time.Time `json:"startedAt"`
	DurationMs int64     `json:"durationMs"`
	Failed     int       `json:"failed"`
}

// CycleRunner is the part of the pipeline the scheduler drives
type CycleRunner interface {
	RunCycle(ctx context.Context, reason, day string) reports.CycleReport
}

// SchedulePort is the scheduler surface other modules use
type SchedulePort interface {
	SetAutoSchedule(ctx context.Context, enabled bool, intervalHours int) (State, error)
	RunNow(ctx context.Context) (reports.CycleReport, error)
	RunCycle(ctx context.Context, reason, day string) (reports.CycleReport, error)
	State() State
}
