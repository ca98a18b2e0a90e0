package module

import "reportrelay/internal/services/reports/domain"

// Ports defines reports module ports exposed via the registry
type Ports struct {
	Runner    domain.RunnerPort
	Connector domain.ConnectorPort
	Identity  domain.IdentityPort
	Tracker   domain.TrackerPort
	Settings  domain.Settings
	History   domain.HistoryPort
	Outcomes  domain.OutcomeRecorder
}
