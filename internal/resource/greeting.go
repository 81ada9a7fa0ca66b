// Package resource serves the URI-addressed greeting resource.
package resource

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/yosida95/uritemplate/v3"
)

// GreetingTemplate is the URI template of the greeting resource.
const GreetingTemplate = "greeting://{name}"

// Greeting resolves greeting://{name} to "Hello, {name}!".
type Greeting struct {
	log      *slog.Logger
	template *uritemplate.Template
}

// NewGreeting creates the greeting resolver.
func NewGreeting(log *slog.Logger) *Greeting {
	return &Greeting{
		log:      log.With("component", "resource"),
		template: uritemplate.MustNew(GreetingTemplate),
	}
}

// Template returns the MCP definition of the resource template.
func (g *Greeting) Template() *mcp.ResourceTemplate {
	return &mcp.ResourceTemplate{
		Name:        "greeting",
		Title:       "Greeting Resource",
		Description: "A personalised greeting for the name in the URI.",
		URITemplate: GreetingTemplate,
		MIMEType:    "text/plain",
	}
}

// Resolve returns the greeting for a concrete URI. ok is false when the URI
// does not match the template or names nobody.
func (g *Greeting) Resolve(uri string) (text string, ok bool) {
	values := g.template.Match(uri)
	if values == nil {
		return "", false
	}

	name := values.Get("name").String()
	if name == "" {
		return "", false
	}

	return fmt.Sprintf("Hello, %s!", name), true
}

// Read implements the MCP resource handler.
func (g *Greeting) Read(_ context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := req.Params.URI

	text, ok := g.Resolve(uri)
	if !ok {
		g.log.Debug("Unmatched resource URI", "uri", uri)

		return nil, mcp.ResourceNotFoundError(uri)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{
				URI:      uri,
				MIMEType: "text/plain",
				Text:     text,
			},
		},
	}, nil
}

// Install adds the template to an SDK server. Templates are not enumerated
// by resources/list, so the greeting stays unlisted.
func (g *Greeting) Install(server *mcp.Server) {
	server.AddResourceTemplate(g.Template(), g.Read)
}
