// Package server parses API server flags and launches the service.
package server

import (
	"context"
	"flag"

	"github.com/louisbranch/boardflow/internal/app"
	"github.com/louisbranch/boardflow/internal/platform/config"
	"github.com/louisbranch/boardflow/internal/platform/otel"
)

// ParseConfig loads environment defaults and then parses flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (app.Config, error) {
	var cfg app.Config
	if err := config.ParseEnv(&cfg); err != nil {
		return app.Config{}, err
	}
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP listen address")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "path to the SQLite database file")
	if err := fs.Parse(args); err != nil {
		return app.Config{}, err
	}
	return cfg, nil
}

// Run starts the API server and blocks until the context ends.
func Run(ctx context.Context, cfg app.Config) error {
	shutdown, err := otel.Setup(ctx, "boardflow-api")
	if err != nil {
		return err
	}
	defer func() {
		_ = shutdown(context.Background())
	}()

	srv, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer srv.Close()

	return srv.ListenAndServe(ctx)
}
