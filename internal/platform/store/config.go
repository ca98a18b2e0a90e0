package store

import (
	"time"

	"reportrelay/internal/platform/config"
)

// Config aggregates per backend configuration
type Config struct {
	AppName string

	PG PGConfig
	CH CHConfig
}

// PGConfig configures postgres connectivity and tracing
type PGConfig struct {
	Enabled     bool
	URL         string
	MaxConns    int32
	LogSQL      bool
	SlowQueryMs int

	// StatementTimeout bounds every statement server side, zero keeps the server default
	StatementTimeout time.Duration

	// boot knobs, zero means default
	ConnectRetries int           // default 20
	PingTimeout    time.Duration // default 3s
}

// CHConfig configures clickhouse connectivity
type CHConfig struct {
	Enabled    bool
	URL        string
	ClientName string
	ClientTag  string
}

// ConfigFromConf reads SERVICE_PGSQL_* and SERVICE_CLICKHOUSE_* style prefixes
// a backend is enabled exactly when its DBURL is set
func ConfigFromConf(app string, pgCfg, chCfg config.Conf) Config {
	pgURL := pgCfg.MayString("DBURL", "")
	chURL := chCfg.MayString("DBURL", "")
	return Config{
		AppName: app,
		PG: PGConfig{
			Enabled:          pgURL != "",
			URL:              pgURL,
			MaxConns:         int32(pgCfg.MayInt("MAX_CONNS", 4)),
			SlowQueryMs:      pgCfg.MayInt("SLOW_MS", 500),
			LogSQL:           pgCfg.MayBool("LOG_SQL", false),
			ConnectRetries:   pgCfg.MayInt("CONNECT_RETRIES", 20),
			PingTimeout:      pgCfg.MayDuration("PING_TIMEOUT", 3*time.Second),
			StatementTimeout: pgCfg.MayDuration("STATEMENT_TIMEOUT", 5*time.Second),
		},
		CH: CHConfig{
			Enabled:    chURL != "",
			URL:        chURL,
			ClientName: app,
			ClientTag:  chCfg.MayString("CLIENT_TAG", "relay"),
		},
	}
}
