// Package domain maps MCP tool calls onto the notation gRPC service.
//
// Each tool has an input struct, an output struct and a handler; handlers
// validate input, call the service with a bounded timeout and return the
// structured output plus a text rendering for clients that show only text.
package domain
