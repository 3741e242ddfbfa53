// Package main provides the cardforge CLI for seeded object generation,
// reproducible scenarios and security marks.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	cardforgecmd "github.com/neetkit/cardforge/internal/cmd/cardforge"
	"github.com/neetkit/cardforge/internal/platform/config"
)

func main() {
	cfg, err := cardforgecmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cardforgecmd.Run(ctx, cfg, os.Stdout, os.Stderr); err != nil {
		stop()
		config.ExitErr(err)
	}
}
