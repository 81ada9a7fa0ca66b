// Package mcp implements the tool registry and invocation envelope that sit
// between the official MCP SDK server and the tool handlers.
//
// The SDK owns JSON-RPC framing and transports. This package keeps its own
// registry of operation descriptors so that every call goes through one
// dispatch path: schema validation, typed decoding, panic recovery, and
// wrapping the structured payload together with its text rendering.
//
// A Registry is built once at startup, sealed, and then shared read-only by
// every connection:
//
//	reg := mcp.NewRegistry(log)
//	desc, _ := mcp.NewDescriptor("add_numbers", "Add Numbers", "Adds two numbers", add)
//	_ = reg.Register(desc)
//	reg.Seal()
//
//	server := sdk.NewServer(&sdk.Implementation{Name: "demo"}, nil)
//	reg.Install(server)
package mcp
