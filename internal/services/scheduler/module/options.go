package module

import (
	"reportrelay/internal/platform/config"
)

// Options controls the schedule defaults. Values may also be read from env
type Options struct {
	BaseHour      int
	IntervalHours int
	// Enabled is the default when no choice has been persisted yet
	Enabled bool
}

// FromConfig reads options using the RELAY_SCHEDULE_ prefix
func FromConfig(cfg config.Conf) Options {
	sc := cfg.Prefix("RELAY_SCHEDULE_")
	return Options{
		BaseHour:      sc.MayHour("BASE_HOUR", 0),
		IntervalHours: sc.MayInt("INTERVAL_HOURS", 4),
		Enabled:       sc.MayBool("ENABLED", true),
	}
}
