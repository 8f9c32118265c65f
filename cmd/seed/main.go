// Package main provides a CLI for seeding the local development database
// with demo data.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/louisbranch/boardflow/internal/platform/config"
	"github.com/louisbranch/boardflow/internal/tools/seed"
)

func main() {
	cfg := seed.Config{Out: os.Stdout}
	flag.StringVar(&cfg.DBPath, "db", "boardflow.db", "path to the SQLite database file")
	flag.BoolVar(&cfg.Verbose, "v", false, "verbose output")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := seed.Run(ctx, cfg); err != nil {
		config.Exitf("seed database: %v", err)
	}
}
