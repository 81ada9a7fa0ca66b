// Package projecttools provides an MCP server exposing a small catalog of
// project tools over HTTP: number addition, the current time in India
// Standard Time, and read-only access to files and directories under a
// workspace root. It also serves a greeting://{name} resource template.
//
// # Basic Usage
//
// Build a server and serve it until the context is cancelled:
//
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
//	defer stop()
//
//	srv, err := projecttools.NewServer(
//	    projecttools.WithLogger(slog.Default()),
//	    projecttools.WithRoot("/srv/workspace"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := srv.ListenAndServe(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// # Embedding
//
// The server is an http.Handler, so it can be mounted on an existing mux:
//
//	mux.Handle("/", srv.Handler())
//
// # Custom Tools
//
// Additional operations are registered alongside the built-in catalog. Input
// and output schemas are inferred from the Go types:
//
//	type MultiplyInput struct {
//	    A float64 `json:"a"`
//	    B float64 `json:"b"`
//	}
//
//	multiply, err := projecttools.NewTool("multiply", "Multiply", "Multiply two numbers",
//	    func(ctx context.Context, in MultiplyInput) (map[string]float64, error) {
//	        return map[string]float64{"result": in.A * in.B}, nil
//	    },
//	)
//
//	srv, err := projecttools.NewServer(projecttools.WithTools(multiply))
//
// # Endpoints
//
//   - POST /mcp: streamable HTTP transport, one session per request
//   - GET /mcp/sse: legacy SSE transport (disable with WithSSE(false))
//   - GET /healthz: liveness and tool count
//   - GET /metrics: Prometheus metrics
//
// # Logging
//
// By default, logging is disabled. Use WithLogger to enable it:
//
//	logger, _ := projecttools.NewLogger(os.Stderr, "debug", "json")
//	srv, err := projecttools.NewServer(projecttools.WithLogger(logger))
//
// The "dev" format writes compact colorized lines when the writer is a
// terminal. Any slog.Handler works; see examples/custom_logger for a logrus
// bridge.
//
// # Error Handling
//
// Dispatch-layer failures are typed and can be inspected with errors.Is and
// errors.As:
//
//	_, err := srv.Dispatch(ctx, "subtract", nil)
//	if errors.Is(err, projecttools.ErrUnknownOperation) {
//	    // no such tool
//	}
//
// Failures a tool reports about its own work, such as a missing file, are
// returned in the result payload instead.
package projecttools
