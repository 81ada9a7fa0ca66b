//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"

	projecttools "github.com/wagiedev/project-tools-mcp"
)

// liveServer is a server listening on a loopback port for one test.
type liveServer struct {
	*projecttools.Server

	root    string
	baseURL string
	cancel  context.CancelFunc
	done    chan struct{}
	err     error
}

// stop cancels the serve context and waits for Serve to return.
func (s *liveServer) stop(t *testing.T) {
	t.Helper()

	s.cancel()

	select {
	case <-s.done:
		require.NoError(t, s.err)
	case <-time.After(15 * time.Second):
		t.Fatal("server did not shut down")
	}
}

// startServer serves a fresh project tree over TCP until the test ends.
func startServer(t *testing.T, opts ...projecttools.Option) *liveServer {
	t.Helper()

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "README.md"), []byte("# demo\n"), 0o600))
	require.NoError(t, os.Mkdir(filepath.Join(root, "src"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "main.go"), []byte("package main\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "api.secret"), []byte("hunter2\n"), 0o600))

	srv, err := projecttools.NewServer(append([]projecttools.Option{projecttools.WithRoot(root)}, opts...)...)
	require.NoError(t, err)

	var lc net.ListenConfig

	ln, err := lc.Listen(context.Background(), "tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())

	live := &liveServer{
		Server:  srv,
		root:    root,
		baseURL: "http://" + ln.Addr().String(),
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	go func() {
		defer close(live.done)
		live.err = srv.Serve(ctx, ln)
	}()

	t.Cleanup(func() {
		cancel()
		<-live.done
	})

	return live
}

func dial(ctx context.Context, t *testing.T, baseURL string, transport projecttools.Transport) *projecttools.ClientSession {
	t.Helper()

	session, err := projecttools.Dial(ctx, baseURL, transport, nil)
	require.NoError(t, err)

	t.Cleanup(func() { _ = session.Close() })

	return session
}

// callJSON calls a tool and decodes its single text block.
func callJSON(ctx context.Context, t *testing.T, session *projecttools.ClientSession, name string, args any, out any) {
	t.Helper()

	res, err := session.CallTool(ctx, &mcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	require.False(t, res.IsError, "%s should not be marked as an error", name)
	require.Len(t, res.Content, 1)

	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	require.NoError(t, json.Unmarshal([]byte(text.Text), out))
}

var transports = []projecttools.Transport{projecttools.TransportStreamable, projecttools.TransportSSE}
