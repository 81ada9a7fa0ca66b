package projecttools

import (
	"context"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	internalmcp "github.com/wagiedev/project-tools-mcp/internal/mcp"
)

// Re-export MCP SDK types for public API.
type (
	// ToolAnnotations describes optional hints about tool behavior.
	// Fields include ReadOnlyHint, DestructiveHint, IdempotentHint,
	// OpenWorldHint, and Title.
	ToolAnnotations = mcp.ToolAnnotations

	// Schema is a JSON Schema object for tool input and output.
	Schema = jsonschema.Schema
)

// Tool describes an operation: its name, schemas and handler.
type Tool = internalmcp.Descriptor

// ToolOption configures a Tool during construction.
type ToolOption = internalmcp.DescriptorOption

// Reporter is implemented by tool outputs that can carry a failure the
// tool reports about its own work. A non-empty ReportedError is logged and
// counted but still returned to the client as a normal result.
type Reporter = internalmcp.Reporter

// WithAnnotations sets MCP tool annotations (hints about tool behavior).
func WithAnnotations(annotations *ToolAnnotations) ToolOption {
	return internalmcp.WithAnnotations(annotations)
}

// NewTool creates a Tool whose input and output schemas are inferred from
// In and Out. In must be a struct or map so that the schema is an object.
//
// Example:
//
//	type GreetInput struct {
//	    Name string `json:"name" jsonschema:"who to greet"`
//	}
//
//	greet, err := projecttools.NewTool("greet", "Greet", "Say hello",
//	    func(ctx context.Context, in GreetInput) (map[string]string, error) {
//	        return map[string]string{"greeting": "Hello, " + in.Name + "!"}, nil
//	    },
//	    projecttools.WithAnnotations(&projecttools.ToolAnnotations{ReadOnlyHint: true}),
//	)
func NewTool[In, Out any](
	name, title, description string,
	fn func(context.Context, In) (Out, error),
	opts ...ToolOption,
) (*Tool, error) {
	return internalmcp.NewDescriptor(name, title, description, fn, opts...)
}

// RenderText renders a payload the way tool results carry it as text:
// indented JSON with a stable key order.
func RenderText(payload any) (string, error) {
	return internalmcp.Render(payload)
}
