// Package server assembles the shelfd HTTP service: collections, routes,
// middleware and the listener lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/getmockd/shelfd/pkg/auth"
	"github.com/getmockd/shelfd/pkg/config"
	"github.com/getmockd/shelfd/pkg/httputil"
	"github.com/getmockd/shelfd/pkg/logging"
	"github.com/getmockd/shelfd/pkg/metrics"
	"github.com/getmockd/shelfd/pkg/ratelimit"
)

// Server is a configured shelfd instance.
type Server struct {
	cfg     *config.Config
	log     *slog.Logger
	errs    *httputil.Errors
	hasher  auth.Hasher
	metrics *metrics.Metrics
	limiter *ratelimit.Limiter
	stores  *Stores
	handler http.Handler

	mu         sync.Mutex
	httpServer *http.Server
	listener   net.Listener
	running    bool
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Server) {
		if log != nil {
			s.log = log
		}
	}
}

// WithHasher overrides the bcrypt hasher built from the configuration.
func WithHasher(h auth.Hasher) Option {
	return func(s *Server) {
		if h != nil {
			s.hasher = h
		}
	}
}

// New validates cfg, opens the collections and builds the handler.
// Call Close (or Stop after Start) to release resources.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Server, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	s := &Server{
		cfg:     cfg,
		log:     logging.Nop(),
		hasher:  auth.Bcrypt{Cost: cfg.Auth.BcryptCost},
		metrics: metrics.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.errs = httputil.NewErrors(s.log, cfg.Development())

	stores, err := openStores(ctx, cfg, s.hasher, s.metrics)
	if err != nil {
		return nil, fmt.Errorf("open stores: %w", err)
	}
	s.stores = stores

	mux, err := s.routes()
	if err != nil {
		_ = stores.Close()
		return nil, err
	}

	if cfg.RateLimit.Enabled {
		s.limiter = ratelimit.New(ratelimit.Config{
			Rate:           cfg.RateLimit.Rate,
			Burst:          cfg.RateLimit.Burst,
			TrustedProxies: cfg.RateLimit.TrustedProxies,
		})
	}

	s.handler = chain(mux,
		recoverer(s.log, s.errs),
		requestID,
		accessLog(s.log),
		s.metrics.Middleware,
		ratelimit.Middleware(s.limiter, s.errs),
	)
	return s, nil
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Stores returns the collections backing the server.
func (s *Server) Stores() *Stores {
	return s.stores
}

// Addr returns the bound address once started, or the configured one.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.cfg.Addr()
}

// Start binds the listener and serves in the background.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("server is already running")
	}

	ln, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Addr(), err)
	}
	s.listener = ln
	s.httpServer = &http.Server{
		Handler:      s.handler,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		ErrorLog:     slog.NewLogLogger(s.log.Handler(), slog.LevelWarn),
	}

	s.log.Info("starting HTTP server", "addr", ln.Addr().String(), "app", s.cfg.App, "env", s.cfg.Env, "storage", s.cfg.Storage.Driver)
	go func(srv *http.Server) {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("HTTP server error", "error", err)
		}
	}(s.httpServer)

	s.running = true
	return nil
}

// Stop gracefully shuts the server down and releases its resources.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	if s.running {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("HTTP shutdown: %w", err))
		}
		s.running = false
		s.log.Info("HTTP server stopped")
	}
	if err := s.close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Close releases resources of a server that was never started.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.close()
}

func (s *Server) close() error {
	if s.limiter != nil {
		s.limiter.Stop()
	}
	if s.stores != nil {
		return s.stores.Close()
	}
	return nil
}

// Run starts the server and blocks until ctx is done, then shuts down
// within the configured shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Start(); err != nil {
		_ = s.Close()
		return err
	}
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.Server.ShutdownTimeout)
	defer cancel()
	return s.Stop(shutdownCtx)
}
