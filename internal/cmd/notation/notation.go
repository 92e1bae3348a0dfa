// Package notation parses notation server flags and starts the gRPC service.
package notation

import (
	"context"
	"flag"
	"fmt"

	entrypoint "github.com/subsigma/rolldice/internal/platform/cmd"
	server "github.com/subsigma/rolldice/internal/services/notation/app"
)

// Config holds notation server configuration.
type Config struct {
	Port int    `env:"ROLLDICE_NOTATION_PORT" envDefault:"8085"`
	Addr string `env:"ROLLDICE_NOTATION_LISTEN_ADDR"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The notation server port")
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "The notation server listen address (overrides -port)")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ListenAddr returns the address the server binds.
func (c Config) ListenAddr() string {
	if c.Addr != "" {
		return c.Addr
	}
	return fmt.Sprintf(":%d", c.Port)
}

// Run starts the notation gRPC service.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceNotation, func(ctx context.Context) error {
		return server.Run(ctx, cfg.ListenAddr())
	})
}
