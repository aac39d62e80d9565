package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/dmrelay/internal/app"
	"github.com/vovakirdan/dmrelay/internal/config"
	"github.com/vovakirdan/dmrelay/internal/log"
)

var (
	configPath  string
	addr        string
	logLevel    string
	storeDriver string
)

var rootCmd = &cobra.Command{
	Use:           "dmrelay",
	Short:         "WebSocket relay for directed private messages",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.Flags().StringVar(&configPath, "config", "", "path to config file (default ./config.yaml)")
	rootCmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.Flags().StringVar(&storeDriver, "store-driver", "", "store driver: sqlite or postgres")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "dmrelay: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	bootstrap := log.New(logLevel)

	cfg, resolvedPath, err := config.Load(bootstrap, configPath)
	if err != nil {
		return err
	}
	cfg.UpdateFrom(config.Config{
		Addr:     addr,
		LogLevel: logLevel,
		Store:    config.StoreConfig{Driver: storeDriver},
	})
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := log.New(cfg.LogLevel)
	logger.Info().Str("config", resolvedPath).Msg("configuration loaded")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, &cfg, logger)
	if err != nil {
		return err
	}

	if err := application.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("server exited with error")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}
