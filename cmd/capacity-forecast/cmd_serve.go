package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/iwvelando/capacity-forecast/internal/server"
	"github.com/iwvelando/capacity-forecast/pkg/constants"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveFlags struct {
	serverConfig string
	address      string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the forecast HTTP API",
	RunE:  runServe,
}

func init() {
	f := serveCmd.Flags()
	f.StringVar(&serveFlags.serverConfig, "server-config", constants.DefaultServerConfigFile, "path to server configuration file")
	f.StringVar(&serveFlags.address, "address", "", "listen address override")
}

func runServe(cmd *cobra.Command, _ []string) error {
	const op = "main.serve"

	cfg, err := server.LoadConfig(serveFlags.serverConfig)
	if err != nil {
		return err
	}
	if serveFlags.address != "" {
		cfg.Address = serveFlags.address
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	logger, err := initializeLogger(cfg.Logging, rootFlags.logLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	handler, err := server.NewHandler(logger, int64(cfg.MaxBodySize), cfg.CacheCapacity, version)
	if err != nil {
		return err
	}
	defer handler.Close()

	srv := &http.Server{
		Addr:              cfg.Address,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening",
			zap.String("op", op),
			zap.String("address", cfg.Address),
			zap.Stringer("maxBodySize", cfg.MaxBodySize),
			zap.Int("cacheCapacity", cfg.CacheCapacity),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	logger.Info("shutting down",
		zap.String("op", op),
	)
	return srv.Shutdown(shutdownCtx)
}
