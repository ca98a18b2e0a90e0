package module

import (
	"reportrelay/internal/adapters/adsconsole"
	"reportrelay/internal/adapters/archive"
	"reportrelay/internal/adapters/sellercentral"
	"reportrelay/internal/adapters/sink"
	"reportrelay/internal/platform/config"
	"reportrelay/internal/services/reports/domain"
)

// Adapters are the remote collaborators the pipeline drives
// Archive and LogCollector may be nil
type Adapters struct {
	Reports   domain.ReportSource
	Spend     domain.SpendSource
	Sink      domain.Sink
	Registrar domain.Registrar
	Archive   domain.Archive

	// LogCollector builds the remote outcome recorder once the identity is known
	LogCollector func(ids domain.IdentityPort) domain.OutcomeRecorder
}

// AdaptersFromConfig builds the real http adapters
// the archive is only built when an endpoint is configured
func AdaptersFromConfig(cfg config.Conf) (Adapters, error) {
	sc, err := sink.New(sink.FromConfig(cfg))
	if err != nil {
		return Adapters{}, err
	}
	ad := Adapters{
		Reports:   sellercentral.New(sellercentral.FromConfig(cfg)),
		Spend:     adsconsole.New(adsconsole.FromConfig(cfg)),
		Sink:      sc,
		Registrar: sc,
		LogCollector: func(ids domain.IdentityPort) domain.OutcomeRecorder {
			return sink.NewLogs(sc, ids)
		},
	}
	if ao := archive.FromConfig(cfg); ao.Enabled() {
		b, err := archive.New(ao)
		if err != nil {
			return Adapters{}, err
		}
		ad.Archive = b
	}
	return ad, nil
}
