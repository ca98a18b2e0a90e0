package module

import (
	"time"

	"reportrelay/internal/platform/config"
	"reportrelay/internal/services/reports/domain"
	"reportrelay/internal/services/reports/guardrails"
)

// Options controls the report pipeline. Values may also be read from env
type Options struct {
	ShopID       string
	PollInterval time.Duration
	PollAttempts int
	PageSize     int
	Timeouts     guardrails.Timeouts

	// Seed references are used when nothing has been cached yet
	SeedNew string
	SeedAll string

	// Archive keeps a copy of each delivered file when an archive adapter is wired
	Archive bool

	// HistoryKeep bounds the in memory outcome history when no database is configured
	HistoryKeep int
}

// FromConfig reads options using the RELAY_ prefix
func FromConfig(cfg config.Conf) Options {
	r := cfg.Prefix("RELAY_")
	d := guardrails.Defaults()
	return Options{
		ShopID:       r.MayString("SHOP_ID", ""),
		PollInterval: r.MayDuration("POLL_INTERVAL", 10*time.Second),
		PollAttempts: r.MayInt("POLL_ATTEMPTS", 5),
		PageSize:     r.MayInt("PAGE_SIZE", 300),
		Timeouts: guardrails.Timeouts{
			Request:  r.MayDuration("TIMEOUT_REQUEST", d.Request),
			Poll:     r.MayDuration("TIMEOUT_POLL", d.Poll),
			Download: r.MayDuration("TIMEOUT_DOWNLOAD", d.Download),
			Page:     r.MayDuration("TIMEOUT_PAGE", d.Page),
			Upload:   r.MayDuration("TIMEOUT_UPLOAD", d.Upload),
			Log:      r.MayDuration("TIMEOUT_LOG", d.Log),
		},
		SeedNew:     cfg.Prefix("RELAY_SELLER_").MayString("REF_NEW", ""),
		SeedAll:     cfg.Prefix("RELAY_SELLER_").MayString("REF_ALL", ""),
		Archive:     cfg.Prefix("RELAY_ARCHIVE_").MayBool("ENABLED", true),
		HistoryKeep: r.MayInt("HISTORY_KEEP", 200),
	}
}

// merge applies non-zero overrides on top of o
func (o Options) merge(in Options) Options {
	if in.ShopID != "" {
		o.ShopID = in.ShopID
	}
	if in.PollInterval > 0 {
		o.PollInterval = in.PollInterval
	}
	if in.PollAttempts > 0 {
		o.PollAttempts = in.PollAttempts
	}
	if in.PageSize > 0 {
		o.PageSize = in.PageSize
	}
	if in.Timeouts != (guardrails.Timeouts{}) {
		o.Timeouts = in.Timeouts
	}
	if in.SeedNew != "" {
		o.SeedNew = in.SeedNew
	}
	if in.SeedAll != "" {
		o.SeedAll = in.SeedAll
	}
	if in.HistoryKeep > 0 {
		o.HistoryKeep = in.HistoryKeep
	}
	return o
}

func (o Options) seeds() map[domain.Kind]domain.ReferenceID {
	return map[domain.Kind]domain.ReferenceID{
		domain.KindNewOrders: domain.ReferenceID(o.SeedNew),
		domain.KindAllOrders: domain.ReferenceID(o.SeedAll),
	}
}
