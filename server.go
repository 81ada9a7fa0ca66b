package projecttools

import (
	"context"
	"encoding/json"
	"net"
	"net/http"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	internalmcp "github.com/wagiedev/project-tools-mcp/internal/mcp"
	"github.com/wagiedev/project-tools-mcp/internal/server"
)

// Version is the server version advertised by default.
const Version = "0.1.0"

// Result is the envelope returned by Dispatch.
type Result = internalmcp.Result

// Server is a sealed MCP server with the built-in tool catalog.
type Server struct {
	inner *server.Server
}

// NewServer builds a Server. Tool registration is complete when NewServer
// returns; tools cannot be added afterwards.
func NewServer(opts ...Option) (*Server, error) {
	options := applyServerOptions(opts)

	log := options.Logger
	if log == nil {
		log = NopLogger()
	}

	serverOpts := []server.Option{
		server.WithVersion(options.Version),
		server.WithDescriptors(options.Tools...),
	}

	if options.Clock != nil {
		serverOpts = append(serverOpts, server.WithClock(options.Clock))
	}

	if options.Registerer != nil {
		serverOpts = append(serverOpts, server.WithRegisterer(options.Registerer))
	}

	inner, err := server.New(log, options.Config, serverOpts...)
	if err != nil {
		return nil, err
	}

	return &Server{inner: inner}, nil
}

// Handler returns the HTTP handler serving /mcp, /mcp/sse, /healthz and
// /metrics.
func (s *Server) Handler() http.Handler {
	return s.inner.Handler()
}

// ListenAndServe serves on the configured address until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	return s.inner.ListenAndServe(ctx)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	return s.inner.Serve(ctx, ln)
}

// Tools returns the registered tool names in registration order.
func (s *Server) Tools() []string {
	descs := s.inner.Registry().List()

	names := make([]string, 0, len(descs))
	for _, d := range descs {
		names = append(names, d.Name)
	}

	return names
}

// Manifest describes every tool as clients see it in tools/list.
func (s *Server) Manifest() []map[string]any {
	return s.inner.Registry().Manifest()
}

// Dispatch invokes a tool in-process, bypassing the transport. Arguments
// are validated against the tool's input schema.
func (s *Server) Dispatch(ctx context.Context, name string, args json.RawMessage) (*Result, error) {
	return s.inner.Registry().Dispatch(ctx, name, args)
}

// ActiveSessions returns the number of connections currently being served.
func (s *Server) ActiveSessions() int {
	return s.inner.Tracker().Active()
}

// MCPServer returns the underlying SDK server, for in-process transports
// such as mcp.NewInMemoryTransports.
func (s *Server) MCPServer() *sdkmcp.Server {
	return s.inner.MCPServer()
}
