// Package domain holds the control api inputs, outputs and ports
package domain

import (
	reports "reportrelay/internal/services/reports/domain"
	sched "reportrelay/internal/services/scheduler/domain"
)

// Ports are the collaborators the control api calls into
// Connector, History and Tracker may be nil
type Ports struct {
	Runner    reports.RunnerPort
	Scheduler sched.SchedulePort
	Connector reports.ConnectorPort
	History   reports.HistoryPort
	Tracker   reports.TrackerPort
}

// RunInput names an optional reference to use instead of requesting a new one
type RunInput struct {
	ReferenceID string `json:"referenceId" validate:"omitempty,max=128"`
}

// AdsInput selects the spend day
type AdsInput struct {
	Date string `json:"date" validate:"required,ymd"`
}

// CycleInput optionally pins the spend day of a full cycle
type CycleInput struct {
	Date string `json:"date" validate:"omitempty,ymd"`
}

// ScheduleInput turns the fixed anchor schedule on or off
type ScheduleInput struct {
	Enabled       *bool `json:"enabled" validate:"required"`
	IntervalHours int   `json:"intervalHours" validate:"min=0,max=24"`
}

// ConnectInput carries the auto flag to report; the scheduler state is used when omitted
type ConnectInput struct {
	AutoEnabled *bool `json:"autoEnabled"`
}

// PingOutput answers the ping command
type PingOutput struct {
	OK      bool   `json:"ok"`
	Service string `json:"service"`
	Version string `json:"version"`
}

// ConnectOutput is the registration sent and the backend answer
type ConnectOutput struct {
	Registration reports.Registration `json:"registration"`
	Backend      reports.SinkResult   `json:"backend"`
}

// OutcomesOutput lists recent outcomes
type OutcomesOutput struct {
	Items []reports.RunOutcome `json:"items"`
}

// StatsOutput reports readiness polling counters and the schedule
type StatsOutput struct {
	Tracker  reports.TrackerStats `json:"tracker"`
	Schedule sched.State          `json:"schedule"`
}
