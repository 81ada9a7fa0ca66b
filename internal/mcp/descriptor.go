package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Handler executes an operation against validated JSON arguments and returns
// its structured payload.
type Handler func(ctx context.Context, args json.RawMessage) (any, error)

// Descriptor describes one registered operation.
type Descriptor struct {
	Name         string
	Title        string
	Description  string
	InputSchema  *jsonschema.Schema
	OutputSchema *jsonschema.Schema
	Annotations  *mcp.ToolAnnotations
	Handler      Handler
}

// DescriptorOption configures a Descriptor during construction.
type DescriptorOption func(*Descriptor)

// WithAnnotations sets MCP tool annotations (hints about tool behavior).
func WithAnnotations(annotations *mcp.ToolAnnotations) DescriptorOption {
	return func(d *Descriptor) {
		d.Annotations = annotations
	}
}

// NewDescriptor creates a Descriptor whose input and output schemas are
// inferred from In and Out. Struct fields without omitempty are required.
func NewDescriptor[In, Out any](
	name, title, description string,
	fn func(ctx context.Context, in In) (Out, error),
	opts ...DescriptorOption,
) (*Descriptor, error) {
	inputSchema, err := jsonschema.For[In](nil)
	if err != nil {
		return nil, fmt.Errorf("infer input schema for %q: %w", name, err)
	}

	outputSchema, err := jsonschema.For[Out](nil)
	if err != nil {
		return nil, fmt.Errorf("infer output schema for %q: %w", name, err)
	}

	d := &Descriptor{
		Name:         name,
		Title:        title,
		Description:  description,
		InputSchema:  inputSchema,
		OutputSchema: outputSchema,
		Handler:      typedHandler(fn),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d, nil
}

// typedHandler adapts a strongly typed function to a Handler.
func typedHandler[In, Out any](fn func(context.Context, In) (Out, error)) Handler {
	return func(ctx context.Context, args json.RawMessage) (any, error) {
		var in In
		if err := json.Unmarshal(args, &in); err != nil {
			return nil, fmt.Errorf("decode arguments: %w", err)
		}

		return fn(ctx, in)
	}
}

// tool converts the descriptor to its MCP wire definition.
func (d *Descriptor) tool() *mcp.Tool {
	t := &mcp.Tool{
		Name:        d.Name,
		Title:       d.Title,
		Description: d.Description,
		InputSchema: d.InputSchema,
		Annotations: d.Annotations,
	}

	if d.OutputSchema != nil {
		t.OutputSchema = d.OutputSchema
	}

	return t
}
