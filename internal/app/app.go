package app

import (
	"context"
	"errors"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/dmrelay/internal/config"
	"github.com/vovakirdan/dmrelay/internal/core"
	"github.com/vovakirdan/dmrelay/internal/store"
	"github.com/vovakirdan/dmrelay/internal/store/postgres"
	"github.com/vovakirdan/dmrelay/internal/store/sqlite"
	transporthttp "github.com/vovakirdan/dmrelay/internal/transport/http"
)

// App wires together core and transport layers.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	hub             *core.Hub
	store           store.Store
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	st, err := openStore(ctx, cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}

	logger.Info().Str("driver", cfg.Store.Driver).Msg("database initialized")

	hub := core.NewHub(st, logger)
	server := transporthttp.NewServer(hub, cfg, logger)

	return &App{
		server:          server,
		shutdownTimeout: cfg.ShutdownTimeout,
		hub:             hub,
		store:           st,
		log:             logger,
	}, nil
}

func openStore(ctx context.Context, cfg config.StoreConfig) (store.Store, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		return sqlite.New(cfg.SQLitePath)
	case config.DriverPostgres:
		return postgres.New(ctx, cfg.PostgresDSN)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// Run starts the HTTP server and blocks until context cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go a.hub.Run(hubCtx)

	serverErr := make(chan error, 1)
	go func() {
		a.log.Info().Str("addr", a.server.Addr).Msg("starting dmrelay server")
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		a.cleanup(stopHub)
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		// Shutdown does not wait for hijacked WebSocket connections; stopping the hub closes them.
		shutdownErr := a.server.Shutdown(shutdownCtx)
		a.cleanup(stopHub)
		if shutdownErr != nil {
			return shutdownErr
		}
		return <-serverErr
	}
}

// cleanup stops the hub, waits for in-flight commands, then closes the store.
func (a *App) cleanup(stopHub context.CancelFunc) {
	stopHub()
	a.hub.Wait()

	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close store")
		} else {
			a.log.Info().Msg("store closed")
		}
	}
}
