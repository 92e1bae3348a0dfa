// Package timeouts defines the durations shared by rolldice clients and servers.
package timeouts

import "time"

// GRPCDial caps how long a client waits for the notation service to report healthy.
const GRPCDial = 3 * time.Second

// GRPCRequest caps a single Evaluate call.
const GRPCRequest = 2 * time.Second

// StatisticsRequest caps a Statistics call, which evaluates the expression
// once per sample.
const StatisticsRequest = 15 * time.Second

// Shutdown limits how long the notation server drains in-flight calls.
const Shutdown = 5 * time.Second
