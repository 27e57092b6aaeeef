// Package main runs the token info REST API:
// - GET /api/v1/tokens looks up mints on demand
// - GET /api/v1/tokens/:mint/snapshots lists recorded lookups
// - /health and /metrics for operators
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"solana-token-info/internal/api"
	"solana-token-info/internal/app"
	"solana-token-info/internal/config"
	"solana-token-info/internal/logger"
)

const serviceName = "server"

func main() {
	configFile := flag.String("config", "", "Path to config file (default: search ./config.yaml, ./config/config.yaml)")
	envPath := flag.String("env-path", "", "Directory holding .env files (default: config)")
	flag.Parse()

	cfg, err := config.Load(serviceName, *configFile, *envPath)
	if err != nil {
		// logger is not up yet
		_, _ = os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Initialize(logger.Config{
		Debug:     cfg.Debug,
		SentryDSN: cfg.SentryDSN,
		Tags:      map[string]string{"service": serviceName},
	}); err != nil {
		_, _ = os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Flush(2 * time.Second)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, cleanup, err := app.New(ctx, cfg, app.SnapshotsMemory)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	defer cleanup()

	server := api.NewServer(api.ServerConfig{
		Debug: cfg.Debug,
		Host:  cfg.Server.Host,
		Port:  cfg.Server.Port,
	}, api.NewHandler(a.Service, a.Snapshots, a.RPC))

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error(err)
		}
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error(err)
	}
	logger.Info("Server stopped")
}
