package mcp

import (
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Reporter is implemented by payloads that can carry a handler-reported
// failure. A non-empty ReportedError means the operation ran and reported a
// problem; the dispatch itself still succeeded.
type Reporter interface {
	ReportedError() string
}

// Result is the uniform outcome of a successful dispatch.
//
// Text is always the deterministic rendering of Structured, so clients that
// only consume text see the same information.
type Result struct {
	Structured any
	Text       string
	Reported   string
}

// NewResult wraps a handler payload into a Result.
func NewResult(payload any) (*Result, error) {
	text, err := Render(payload)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Structured: payload,
		Text:       text,
	}

	if r, ok := payload.(Reporter); ok {
		res.Reported = r.ReportedError()
	}

	return res, nil
}

// Render serializes a structured payload to its text representation.
// The output is indented JSON and byte-identical for equal values.
func Render(payload any) (string, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("render payload: %w", err)
	}

	return string(data), nil
}

// Failed reports whether the handler reported an error inside its payload.
func (r *Result) Failed() bool {
	return r.Reported != ""
}

// CallToolResult converts the result to the MCP wire shape.
// Handler-reported failures are not marked IsError: the tool ran.
func (r *Result) CallToolResult() *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: r.Text},
		},
		StructuredContent: r.Structured,
	}
}
