// Package http hosts the control API server, the chi router facade and JSON response helpers
package http

import (
	"context"
	"errors"
	"net"
	stdhttp "net/http"
	"time"

	"reportrelay/internal/platform/config"
	"reportrelay/internal/platform/logger"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// ServerOptions tunes the listener; zero values use defaults
type ServerOptions struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	Profiler        bool
}

// ServerOptionsFromConfig reads ADDR, READ_TIMEOUT, WRITE_TIMEOUT, SHUTDOWN_TIMEOUT and PROFILER
func ServerOptionsFromConfig(cfg config.Conf) ServerOptions {
	return ServerOptions{
		Addr:            cfg.MayString("ADDR", ":4080"),
		ReadTimeout:     cfg.MayDuration("READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    cfg.MayDuration("WRITE_TIMEOUT", 3*time.Minute),
		ShutdownTimeout: cfg.MayDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		Profiler:        cfg.MayBool("PROFILER", false),
	}
}

// Server is a thin wrapper over chi + stdlib http.Server
type Server struct {
	opt ServerOptions
	mux *chi.Mux
	srv *stdhttp.Server
}

// NewServer creates a server; opts receive the *chi.Mux so callers can mount root middleware
// write timeout is generous because synchronous run commands wait on report polling
func NewServer(opt ServerOptions, opts ...func(*chi.Mux)) *Server {
	if opt.Addr == "" {
		opt.Addr = ":4080"
	}
	if opt.ShutdownTimeout <= 0 {
		opt.ShutdownTimeout = 10 * time.Second
	}
	m := chi.NewRouter()
	for _, o := range opts {
		o(m)
	}
	if opt.Profiler {
		m.Mount("/debug", chimw.Profiler())
	}
	return &Server{
		opt: opt,
		mux: m,
		srv: &stdhttp.Server{
			Addr:              opt.Addr,
			Handler:           m,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       opt.ReadTimeout,
			WriteTimeout:      opt.WriteTimeout,
		},
	}
}

// Router returns a Router facade over the internal chi mux
func (s *Server) Router() Router { return AdaptChi(s.mux) }

// Handler exposes the mux for httptest servers
func (s *Server) Handler() stdhttp.Handler { return s.mux }

// Addr returns the configured listening address
func (s *Server) Addr() string { return s.opt.Addr }

// Run listens until ctx ends, then drains in-flight requests within ShutdownTimeout
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opt.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on a caller-provided listener
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	log := logger.Named("http")
	log.Info().Str("addr", ln.Addr().String()).Msg("http listening")

	errCh := make(chan error, 1)
	go func() { errCh <- s.srv.Serve(ln) }()

	select {
	case err := <-errCh:
		if errors.Is(err, stdhttp.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	sctx, cancel := context.WithTimeout(context.Background(), s.opt.ShutdownTimeout)
	defer cancel()
	log.Info().Msg("http shutting down")
	if err := s.srv.Shutdown(sctx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
		return err
	}
	return nil
}
