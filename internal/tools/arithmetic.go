package tools

import (
	"context"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wagiedev/project-tools-mcp/internal/mcp"
)

// AddNumbersInput is the input of add_numbers.
type AddNumbersInput struct {
	A float64 `json:"a" jsonschema:"first addend"`
	B float64 `json:"b" jsonschema:"second addend"`
}

// AddNumbersOutput is the output of add_numbers.
type AddNumbersOutput struct {
	Result float64 `json:"result" jsonschema:"the sum a + b"`
}

// AddNumbers returns a + b.
func AddNumbers(_ context.Context, in AddNumbersInput) (AddNumbersOutput, error) {
	return AddNumbersOutput{Result: in.A + in.B}, nil
}

func (c *Catalog) addNumbersDescriptor() (*mcp.Descriptor, error) {
	return mcp.NewDescriptor(
		AddNumbersName,
		"Add Numbers",
		"Add two numbers and return their sum.",
		AddNumbers,
		mcp.WithAnnotations(&sdk.ToolAnnotations{
			ReadOnlyHint:   true,
			IdempotentHint: true,
		}),
	)
}
