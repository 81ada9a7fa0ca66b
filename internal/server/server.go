// Package server assembles the MCP HTTP server: the tool registry, the
// greeting resource, the SDK transports and the per-connection lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/wagiedev/project-tools-mcp/internal/config"
	"github.com/wagiedev/project-tools-mcp/internal/mcp"
	"github.com/wagiedev/project-tools-mcp/internal/metrics"
	"github.com/wagiedev/project-tools-mcp/internal/resource"
	"github.com/wagiedev/project-tools-mcp/internal/session"
	"github.com/wagiedev/project-tools-mcp/internal/tools"
)

// Implementation metadata advertised during initialize.
const (
	Name  = "project-tools"
	Title = "Project Tools MCP Server"
)

// Server is a configured, sealed MCP server ready to be mounted or run.
type Server struct {
	log     *slog.Logger
	cfg     *config.Config
	version string

	registry *mcp.Registry
	greeting *resource.Greeting
	sdk      *sdkmcp.Server
	tracker  *session.Tracker
	metrics  *metrics.Metrics
	handler  http.Handler
}

type options struct {
	clock      clockwork.Clock
	registerer *prometheus.Registry
	extra      []*mcp.Descriptor
	version    string
}

// Option configures a Server.
type Option func(*options)

// WithClock replaces the wall clock used by the time tool.
func WithClock(clock clockwork.Clock) Option {
	return func(o *options) {
		o.clock = clock
	}
}

// WithRegisterer sets the Prometheus registry collectors are added to.
// Defaults to a private registry per server.
func WithRegisterer(reg *prometheus.Registry) Option {
	return func(o *options) {
		o.registerer = reg
	}
}

// WithDescriptors registers additional operations after the built-in catalog.
func WithDescriptors(descs ...*mcp.Descriptor) Option {
	return func(o *options) {
		o.extra = append(o.extra, descs...)
	}
}

// WithVersion sets the advertised server version.
func WithVersion(version string) Option {
	return func(o *options) {
		o.version = version
	}
}

// New builds a Server from cfg. The registry is sealed before New returns.
func New(log *slog.Logger, cfg *config.Config, opts ...Option) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := &options{version: "dev"}
	for _, opt := range opts {
		opt(o)
	}

	newID, err := session.NewIDGenerator(session.IDPolicy(cfg.SessionIDs))
	if err != nil {
		return nil, err
	}

	m := metrics.New(o.registerer)

	catalogOpts := []tools.Option{tools.WithRoot(cfg.Root), tools.WithDenyPaths(cfg.DenyPaths...)}
	if o.clock != nil {
		catalogOpts = append(catalogOpts, tools.WithClock(o.clock))
	}

	catalog, err := tools.New(log, catalogOpts...)
	if err != nil {
		return nil, fmt.Errorf("build tool catalog: %w", err)
	}

	registry := mcp.NewRegistry(log, mcp.WithObserver(m))
	if err := catalog.Register(registry); err != nil {
		return nil, err
	}

	for _, d := range o.extra {
		if err := registry.Register(d); err != nil {
			return nil, err
		}
	}

	registry.Seal()

	s := &Server{
		log:      log.With("component", "server"),
		cfg:      cfg,
		version:  o.version,
		registry: registry,
		greeting: resource.NewGreeting(log),
		tracker:  session.NewTracker(log, newID, session.WithSessionObserver(m)),
		metrics:  m,
	}

	s.sdk = sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    Name,
		Title:   Title,
		Version: o.version,
	}, &sdkmcp.ServerOptions{
		Logger:       log.With("component", "sdk"),
		GetSessionID: newID,
	})

	registry.Install(s.sdk)
	s.greeting.Install(s.sdk)

	s.handler = s.routes()

	s.log.Debug("Server assembled",
		"tools", registry.Len(),
		"root", catalog.Root(),
		"session_ids", cfg.SessionIDs,
		"json_response", cfg.JSONResponse,
		"sse", cfg.SSE,
	)

	return s, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.handler }

// Registry returns the sealed tool registry.
func (s *Server) Registry() *mcp.Registry { return s.registry }

// Tracker returns the session tracker.
func (s *Server) Tracker() *session.Tracker { return s.tracker }

// Metrics returns the server collectors.
func (s *Server) Metrics() *metrics.Metrics { return s.metrics }

// MCPServer returns the underlying SDK server, for in-process transports.
func (s *Server) MCPServer() *sdkmcp.Server { return s.sdk }

// ListenAndServe listens on the configured address and serves until ctx is
// cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	var lc net.ListenConfig

	ln, err := lc.Listen(ctx, "tcp", s.cfg.Addr())
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Addr(), err)
	}

	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// within the configured timeout. Streams still open at the deadline are
// closed and their sessions released.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
		ErrorLog:          slog.NewLogLogger(s.log.Handler(), slog.LevelWarn),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.log.Info("Listening", "addr", ln.Addr().String(), "tools", s.registry.Len())

		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ShutdownTimeout)
		defer cancel()

		s.log.Info("Shutting down", "active_sessions", s.tracker.Active())

		err := srv.Shutdown(shutdownCtx)
		if errors.Is(err, context.DeadlineExceeded) {
			closeErr := srv.Close()
			s.log.Warn("Shutdown timed out, closing remaining connections",
				"released", s.tracker.CloseAll(), "error", closeErr)

			return nil
		}

		return err
	})

	return g.Wait()
}
