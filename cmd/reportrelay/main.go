// @title         reportrelay control API
// @version       0.1.0
// @description   Trigger report runs, manage the fixed anchor schedule and read run outcomes

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"reportrelay/internal/modkit"
	"reportrelay/internal/modkit/module"
	"reportrelay/internal/platform/config"
	"reportrelay/internal/platform/logger"
	phttp "reportrelay/internal/platform/net/http"
	"reportrelay/internal/platform/store"
	"reportrelay/internal/platform/store/migrate"
	"reportrelay/internal/services/outcomes"
	"reportrelay/internal/services/reports/repo"

	controldom "reportrelay/internal/services/control/domain"
	controlmod "reportrelay/internal/services/control/module"
	reports "reportrelay/internal/services/reports/domain"
	reportsmod "reportrelay/internal/services/reports/module"
	schedmod "reportrelay/internal/services/scheduler/module"
)

func main() {
	var (
		fMode = flag.String("mode", "serve", "relay mode: serve | cycle | import | report | ads | connect | migrate")
		fRef  = flag.String("ref", "", "reuse this reference instead of requesting a new report (import, report)")
		fDate = flag.String("date", "", "spend day YYYY-MM-DD (ads, cycle), defaults to today UTC")
	)
	flag.Parse()

	root := config.Load()
	logger.Init(logger.FromEnv())
	l := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx,
		store.ConfigFromConf("reportrelay", root.Prefix("SERVICE_PGSQL_"), root.Prefix("SERVICE_CLICKHOUSE_")),
		store.WithLogger(*l),
	)
	if err != nil {
		l.Fatal().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	if *fMode == "migrate" || root.MayBool("RELAY_AUTO_MIGRATE", true) {
		if err := migrateAll(ctx, root, st); err != nil {
			l.Fatal().Err(err).Msg("migrate failed")
		}
		if *fMode == "migrate" {
			l.Info().Msg("migrations applied")
			return
		}
	}

	deps := modkit.Deps{Log: *l, Cfg: root, PG: st.PG, CH: st.CH}

	ad, err := reportsmod.AdaptersFromConfig(root)
	if err != nil {
		l.Fatal().Err(err).Msg("adapters")
	}
	rm := reportsmod.New(deps, reportsmod.Options{}, ad)
	defer rm.Close()
	module.Register(rm.Name(), rm.Ports())
	rp := module.MustPortsOf[reportsmod.Ports](rm)

	sm := schedmod.New(deps, schedmod.Options{}, rp.Runner, rp.Settings, rp.Outcomes)
	module.Register(sm.Name(), sm.Ports())
	sp := module.MustPortsOf[schedmod.Ports](sm)

	switch *fMode {
	case "serve":
		cm := controlmod.New(deps, modkit.WithPorts(controldom.Ports{
			Runner:    rp.Runner,
			Scheduler: sp.Scheduler,
			Connector: rp.Connector,
			History:   rp.History,
			Tracker:   rp.Tracker,
		}))

		srv := phttp.NewServer(phttp.ServerOptionsFromConfig(root.Prefix("RELAY_API_")))
		if err := modkit.Boot(ctx, srv.Router(), rm, sm, cm); err != nil {
			l.Fatal().Err(err).Msg("boot failed")
		}

		l.Info().Str("addr", srv.Addr()).Strs("modules", module.Names()).Msg("relay listening")
		if err := srv.Run(ctx); err != nil {
			l.Error().Err(err).Msg("http server stopped")
		}

	case "cycle":
		rep, err := sp.Scheduler.RunCycle(ctx, "cli", *fDate)
		if err != nil {
			l.Error().Err(err).Msg("cycle failed")
			exit(rm, 1)
		}
		printJSON(rep)
		if rep.Failed() > 0 {
			exit(rm, 1)
		}

	case "import", "report", "ads":
		kind, err := reports.ParseKind(*fMode)
		if err != nil {
			l.Fatal().Err(err).Msg("kind")
		}
		res, err := rp.Runner.Run(ctx, kind, reports.Override{Reference: reports.ReferenceID(*fRef), Date: *fDate})
		if err != nil {
			l.Error().Err(err).Str("kind", string(kind)).Msg("run failed")
			exit(rm, 1)
		}
		printJSON(res)

	case "connect":
		if rp.Connector == nil {
			l.Fatal().Msg("connect needs RELAY_INGEST_URL")
		}
		// Start loads the persisted auto flag; the child ctx disarms the timer again
		sctx, cancel := context.WithCancel(ctx)
		if err := sm.Start(sctx); err != nil {
			cancel()
			l.Fatal().Err(err).Msg("scheduler state")
		}
		enabled := sp.Scheduler.State().Enabled
		cancel()

		reg, answer, err := rp.Connector.Connect(ctx, enabled)
		if err != nil {
			l.Error().Err(err).Msg("connect failed")
			exit(rm, 1)
		}
		printJSON(controldom.ConnectOutput{Registration: reg, Backend: answer})

	default:
		l.Fatal().Str("mode", *fMode).Msg("unknown mode")
	}
}

// migrateAll applies the postgres schema and the clickhouse outcome table when each backend is on
func migrateAll(ctx context.Context, root config.Conf, st *store.Store) error {
	if url := root.Prefix("SERVICE_PGSQL_").MayString("DBURL", ""); url != "" {
		if err := migrate.Up(ctx, migrate.Options{URL: url, Source: repo.Migrations()}); err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
	}
	if st.CH != nil {
		if err := outcomes.NewColumnar(st.CH).EnsureSchema(ctx); err != nil {
			return fmt.Errorf("clickhouse: %w", err)
		}
	}
	return nil
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// exit flushes pending outcome writes; os.Exit skips defers
func exit(rm *reportsmod.Module, code int) {
	rm.Close()
	os.Exit(code)
}
