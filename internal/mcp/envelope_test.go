package mcp

import (
	"math"
	"testing"

	mcpgo "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
)

func TestRenderIsDeterministic(t *testing.T) {
	payload := map[string]any{
		"zeta":  1,
		"alpha": []string{"x", "y"},
		"mid":   map[string]any{"b": true, "a": nil},
	}

	first, err := Render(payload)
	require.NoError(t, err)

	for range 10 {
		again, err := Render(payload)
		require.NoError(t, err)
		require.Equal(t, first, again)
	}

	require.Equal(t, "{\n  \"alpha\": [\n    \"x\",\n    \"y\"\n  ],\n  \"mid\": {\n    \"a\": null,\n    \"b\": true\n  },\n  \"zeta\": 1\n}", first)
}

func TestRenderRejectsUnencodable(t *testing.T) {
	_, err := Render(math.Inf(1))
	require.Error(t, err)
}

func TestNewResult(t *testing.T) {
	res, err := NewResult(sumOut{Result: 3})
	require.NoError(t, err)
	require.Equal(t, "{\n  \"result\": 3\n}", res.Text)
	require.False(t, res.Failed())

	wire := res.CallToolResult()
	require.False(t, wire.IsError)
	require.Equal(t, sumOut{Result: 3}, wire.StructuredContent)
	require.Len(t, wire.Content, 1)

	text, ok := wire.Content[0].(*mcpgo.TextContent)
	require.True(t, ok)
	require.Equal(t, res.Text, text.Text)
}

func TestNewResult_Reporter(t *testing.T) {
	res, err := NewResult(reportOut{Path: "/x", Error: "permission denied"})
	require.NoError(t, err)
	require.True(t, res.Failed())
	require.Equal(t, "permission denied", res.Reported)
	require.Contains(t, res.Text, `"error": "permission denied"`)

	clean, err := NewResult(reportOut{Path: "/x"})
	require.NoError(t, err)
	require.False(t, clean.Failed())
	require.NotContains(t, clean.Text, "error")
}
