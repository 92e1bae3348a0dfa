// Package service runs the rolldice MCP server over stdio and connects its
// tools to the notation gRPC service.
package service
