package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	rolldicecmd "github.com/subsigma/rolldice/internal/cmd/rolldice"
	entrypoint "github.com/subsigma/rolldice/internal/platform/cmd"
	"github.com/subsigma/rolldice/internal/platform/config"
	apperrors "github.com/subsigma/rolldice/internal/platform/errors"
)

func main() {
	cfg, err := rolldicecmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix(entrypoint.LogPrefix(entrypoint.ServiceRolldice))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rolldicecmd.Run(ctx, cfg, os.Stdout); err != nil {
		if errors.Is(err, apperrors.ErrMalformedExpression) {
			config.ExitCodef(config.ExitMalformed, "malformed expression: %v", err)
		}
		config.Exitf("roll: %v", err)
	}
}
