package projecttools

import (
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/wagiedev/project-tools-mcp/internal/config"
)

// Config holds server settings. See LoadConfig for the file and
// environment keys.
type Config = config.Config

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	return config.Default()
}

// LoadConfig layers an optional YAML file and the PORT, HOST and MCP_*
// environment variables over the defaults.
func LoadConfig(path string) (*Config, error) {
	return config.Load(path)
}

// Session identifier policies for WithSessionIDPolicy.
const (
	SessionIDsULID = "ulid"
	SessionIDsNone = "none"
)

// ServerOptions collects the settings applied by Option values.
type ServerOptions struct {
	// Logger is the slog logger for server output.
	// If nil, logging is disabled (silent operation).
	Logger *slog.Logger

	// Config is the base configuration the other options adjust.
	Config *Config

	// Clock replaces the wall clock used by the time tool.
	Clock clockwork.Clock

	// Registerer receives the server's Prometheus collectors. If nil, the
	// server uses a private registry exposed at /metrics.
	Registerer *prometheus.Registry

	// Tools are registered after the built-in catalog.
	Tools []*Tool

	// Version is advertised to clients during initialize.
	Version string
}

// Option configures a Server using the functional options pattern.
type Option func(*ServerOptions)

// applyServerOptions applies functional options over the default config.
func applyServerOptions(opts []Option) *ServerOptions {
	options := &ServerOptions{
		Config:  config.Default(),
		Version: Version,
	}
	for _, opt := range opts {
		opt(options)
	}

	return options
}

// ===== Basic Configuration =====

// WithLogger sets the logger for server output.
// If not set, logging is disabled (silent operation).
func WithLogger(logger *slog.Logger) Option {
	return func(o *ServerOptions) {
		o.Logger = logger
	}
}

// WithConfig replaces the base configuration. Options after it adjust the
// copy; options before it are overwritten.
func WithConfig(cfg *Config) Option {
	return func(o *ServerOptions) {
		copied := *cfg
		o.Config = &copied
	}
}

// WithAddr sets the listen host and port.
func WithAddr(host string, port int) Option {
	return func(o *ServerOptions) {
		o.Config.Host = host
		o.Config.Port = port
	}
}

// WithVersion sets the version advertised to clients.
func WithVersion(version string) Option {
	return func(o *ServerOptions) {
		o.Version = version
	}
}

// ===== Tools =====

// WithRoot sets the directory file tools resolve relative paths against.
// Defaults to the process working directory.
func WithRoot(root string) Option {
	return func(o *ServerOptions) {
		o.Config.Root = root
	}
}

// WithDenyPaths adds doublestar glob patterns, matched against paths
// relative to the root, that file tools refuse to read or list.
func WithDenyPaths(patterns ...string) Option {
	return func(o *ServerOptions) {
		o.Config.DenyPaths = append(o.Config.DenyPaths, patterns...)
	}
}

// WithClock replaces the wall clock used by the time tool.
func WithClock(clock clockwork.Clock) Option {
	return func(o *ServerOptions) {
		o.Clock = clock
	}
}

// WithTools registers additional tools after the built-in catalog.
// Registration fails if a name collides with an existing tool.
func WithTools(tools ...*Tool) Option {
	return func(o *ServerOptions) {
		o.Tools = append(o.Tools, tools...)
	}
}

// ===== Transport =====

// WithSessionIDPolicy selects session identifiers: SessionIDsULID (default)
// or SessionIDsNone for session-less operation.
func WithSessionIDPolicy(policy string) Option {
	return func(o *ServerOptions) {
		o.Config.SessionIDs = policy
	}
}

// WithJSONResponse controls whether /mcp answers POSTs with a single JSON
// body (the default) or an event stream.
func WithJSONResponse(enabled bool) Option {
	return func(o *ServerOptions) {
		o.Config.JSONResponse = enabled
	}
}

// WithSSE enables or disables the legacy SSE endpoint at /mcp/sse.
func WithSSE(enabled bool) Option {
	return func(o *ServerOptions) {
		o.Config.SSE = enabled
	}
}

// WithCORSOrigins sets the allowed cross-origin request origins.
func WithCORSOrigins(origins ...string) Option {
	return func(o *ServerOptions) {
		o.Config.CORSOrigins = origins
	}
}

// WithRateLimit limits MCP requests to rps per second with the given burst.
// Zero rps disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(o *ServerOptions) {
		o.Config.RateLimit = rps
		o.Config.RateBurst = burst
	}
}

// WithShutdownTimeout bounds graceful shutdown.
func WithShutdownTimeout(timeout time.Duration) Option {
	return func(o *ServerOptions) {
		o.Config.ShutdownTimeout = timeout
	}
}

// ===== Observability =====

// WithRegisterer sets the Prometheus registry for server collectors.
func WithRegisterer(reg *prometheus.Registry) Option {
	return func(o *ServerOptions) {
		o.Registerer = reg
	}
}
