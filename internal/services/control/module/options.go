package module

import (
	"net/http"
	"time"

	"reportrelay/internal/platform/config"
	"reportrelay/internal/platform/net/middleware"
)

// Options controls the control api stack
type Options struct {
	Token     string
	RateRPS   float64
	RateBurst int
	SlowLog   time.Duration
	Timeout   time.Duration
	Origins   []string
	Swagger   bool
}

// FromConfig reads options using the RELAY_API_ prefix
func FromConfig(cfg config.Conf) Options {
	api := cfg.Prefix("RELAY_API_")
	return Options{
		Token:     api.MayString("TOKEN", ""),
		RateRPS:   api.MayFloat64("RATE_RPS", 20),
		RateBurst: api.MayInt("RATE_BURST", 40),
		SlowLog:   api.MayDuration("SLOW_LOG", 2*time.Second),
		Timeout:   api.MayDuration("REQUEST_TIMEOUT", 0),
		Origins:   api.MayCSV("CORS_ORIGINS", nil),
		Swagger:   api.MayBool("SWAGGER", true),
	}
}

// Stack builds the middleware chain for the versioned api
func (o Options) Stack() []func(http.Handler) http.Handler {
	return middleware.Stack(middleware.StackOptions{
		CORS:      middleware.CORSOptions{AllowedOrigins: o.Origins},
		SlowLog:   o.SlowLog,
		RateRPS:   o.RateRPS,
		RateBurst: o.RateBurst,
		Token:     o.Token,
		Timeout:   o.Timeout,
	})
}
