package projecttools

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// WithServer manages server lifecycle with automatic shutdown.
//
// This helper builds a server, serves it on an ephemeral loopback port,
// calls fn with the base URL, and shuts the server down when fn returns.
// It is intended for tests and examples that need a live endpoint.
//
// Example usage:
//
//	err := projecttools.WithServer(ctx, func(baseURL string) error {
//	    session, err := projecttools.Dial(ctx, baseURL, projecttools.TransportStreamable, nil)
//	    if err != nil {
//	        return err
//	    }
//	    defer session.Close()
//
//	    _, err = session.CallTool(ctx, &mcp.CallToolParams{Name: "add_numbers", Arguments: map[string]any{"a": 1, "b": 2}})
//	    return err
//	},
//	    projecttools.WithRoot(dir),
//	)
func WithServer(ctx context.Context, fn func(baseURL string) error, opts ...Option) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	srv, err := NewServer(opts...)
	if err != nil {
		return fmt.Errorf("failed to build server: %w", err)
	}

	var lc net.ListenConfig

	ln, err := lc.Listen(ctx, "tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	serveCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	served := make(chan error, 1)

	go func() { served <- srv.Serve(serveCtx, ln) }()

	fnErr := fn("http://" + ln.Addr().String())

	cancel()

	return errors.Join(fnErr, <-served)
}
