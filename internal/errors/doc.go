// Package errors defines error types for the project tools server.
//
// Errors fall into two tiers. Dispatch-layer failures (unknown operation,
// invalid arguments, handler faults) are returned as Go errors and surface
// to MCP clients as protocol errors. Handler-reported failures, such as a
// file that cannot be read, are not errors at all: they travel inside the
// tool's structured payload.
//
// All error types support unwrapping and can be checked using errors.Is
// and errors.As.
package errors
