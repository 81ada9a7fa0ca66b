package projecttools

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ClientSession is a connected MCP client session.
type ClientSession = mcp.ClientSession

// Transport selects the HTTP transport Dial uses.
type Transport string

const (
	// TransportStreamable posts JSON-RPC to /mcp.
	TransportStreamable Transport = "streamable"
	// TransportSSE holds an event stream on /mcp/sse.
	TransportSSE Transport = "sse"
)

// Dial connects an MCP client to a server at baseURL, such as
// "http://localhost:3000". The caller closes the returned session.
func Dial(ctx context.Context, baseURL string, transport Transport, httpClient *http.Client) (*ClientSession, error) {
	baseURL = strings.TrimRight(baseURL, "/")

	var t mcp.Transport

	switch transport {
	case TransportStreamable, "":
		t = &mcp.StreamableClientTransport{Endpoint: baseURL + "/mcp", HTTPClient: httpClient}
	case TransportSSE:
		t = &mcp.SSEClientTransport{Endpoint: baseURL + "/mcp/sse", HTTPClient: httpClient}
	default:
		return nil, fmt.Errorf("unknown transport %q", transport)
	}

	client := mcp.NewClient(&mcp.Implementation{Name: "project-tools-client", Version: Version}, nil)

	session, err := client.Connect(ctx, t, nil)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", baseURL, err)
	}

	return session, nil
}
