package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/dmrelay/internal/config"
)

func TestAppRunStopsOnCancel(t *testing.T) {
	req := require.New(t)
	logger := zerolog.Nop()

	cfg := config.Default()
	cfg.Addr = "127.0.0.1:0"
	cfg.Store.SQLitePath = filepath.Join(t.TempDir(), "relay.db")

	ctx, cancel := context.WithCancel(context.Background())
	application, err := New(ctx, &cfg, &logger)
	req.NoError(err)

	done := make(chan error, 1)
	go func() { done <- application.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		req.NoError(err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}

	// The store is closed after the hub has drained.
	_, err = application.store.FindUserByID(context.Background(), 1)
	req.Error(err)
}

func TestOpenStoreUnknownDriver(t *testing.T) {
	_, err := openStore(context.Background(), config.StoreConfig{Driver: "mysql"})
	require.ErrorContains(t, err, "unknown store driver")
}
