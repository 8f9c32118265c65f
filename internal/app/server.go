// Package app assembles the boardflow API server from its parts: the
// SQLite store, the domain services, and the HTTP handler.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/louisbranch/boardflow/internal/api/httpapi"
	"github.com/louisbranch/boardflow/internal/auth/session"
	boardservice "github.com/louisbranch/boardflow/internal/board/service"
	"github.com/louisbranch/boardflow/internal/platform/timeouts"
	"github.com/louisbranch/boardflow/internal/storage/sqlite"
	"github.com/louisbranch/boardflow/internal/telemetry"
	workspaceservice "github.com/louisbranch/boardflow/internal/workspace/service"
)

// Config holds the server settings resolved from environment and flags.
type Config struct {
	Addr   string `env:"BOARDFLOW_HTTP_ADDR" envDefault:":8080"`
	DBPath string `env:"BOARDFLOW_DB_PATH" envDefault:"boardflow.db"`
}

// Server owns the HTTP listener and the storage it serves from.
type Server struct {
	addr       string
	httpServer *http.Server
	store      *sqlite.Store
}

// New opens storage, wires the services, and prepares the HTTP server.
// The caller must Close the returned server.
func New(cfg Config) (*Server, error) {
	sessions, err := session.LoadConfigFromEnv(nil)
	if err != nil {
		return nil, fmt.Errorf("load session config: %w", err)
	}

	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	emitter := telemetry.NewEmitter(store)
	handler := httpapi.NewHandler(httpapi.Config{
		Workspaces: workspaceservice.NewService(store, emitter),
		Board:      boardservice.NewService(store, emitter),
		Users:      store,
		Sessions:   sessions,
	})

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           http.TimeoutHandler(handler, timeouts.Request, `{"error":{"code":"DEADLINE_EXCEEDED","message":"request timed out"}}`),
		ReadHeaderTimeout: timeouts.ReadHeader,
	}

	return &Server{
		addr:       cfg.Addr,
		httpServer: httpServer,
		store:      store,
	}, nil
}

// ListenAndServe runs the HTTP server until the context ends.
//
// On cancellation, it performs a bounded shutdown so in-flight requests
// are drained before hard close.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("server is nil")
	}
	if ctx == nil {
		return errors.New("context is required")
	}

	serveErr := make(chan error, 1)
	log.Printf("boardflow api listening on %s", s.addr)
	go func() {
		serveErr <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}

// Close releases the storage held by the server.
func (s *Server) Close() error {
	if s == nil || s.store == nil {
		return nil
	}
	return s.store.Close()
}
