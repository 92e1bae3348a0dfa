package domain

import "github.com/subsigma/rolldice/internal/platform/timeouts"

// grpcCallTimeout caps a single Evaluate call from an MCP tool handler.
const grpcCallTimeout = timeouts.GRPCRequest

// grpcLongCallTimeout caps Statistics calls, which evaluate the expression
// once per sample.
const grpcLongCallTimeout = timeouts.StatisticsRequest
