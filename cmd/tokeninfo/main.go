// Package main looks up one or more SPL token mints and prints what was found:
// mint account, Metaplex metadata and the off-chain JSON document.
//
// Usage:
//
//	tokeninfo [flags] <mint> [<mint>...]
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"solana-token-info/internal/app"
	"solana-token-info/internal/config"
	"solana-token-info/internal/domain"
	"solana-token-info/internal/logger"
)

const serviceName = "tokeninfo"

// Exit codes.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet(serviceName, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: %s [flags] <mint> [<mint>...]\n\nFlags:\n", serviceName)
		fs.PrintDefaults()
	}

	configFile := fs.String("config", "", "Path to config file")
	envPath := fs.String("env-path", "", "Directory holding .env files (default: config)")
	rpcEndpoint := fs.String("rpc-endpoint", "", "Solana RPC endpoint (overrides config)")
	concurrency := fs.Int("concurrency", 0, "Max lookups in flight, 0 = one per mint (overrides config)")
	probeWebsite := fs.Bool("probe-website", false, "Count DNS records of the token website (overrides config)")
	jsonOut := fs.Bool("json", false, "Print results as JSON")
	postgresDSN := fs.String("postgres-dsn", "", "Record lookups as snapshots in this PostgreSQL database")

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return exitOK
		}
		return exitUsage
	}

	if fs.NArg() == 0 {
		fmt.Fprintln(stderr, "at least one mint is required")
		fs.Usage()
		return exitUsage
	}
	mints, err := domain.ParsePublicKeys(fs.Args())
	if err != nil {
		fmt.Fprintln(stderr, err)
		fs.Usage()
		return exitUsage
	}

	cfg, err := config.Load(serviceName, *configFile, *envPath)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitError
	}

	// Only flags given on the command line override the config.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "rpc-endpoint":
			cfg.RPC.Endpoint = *rpcEndpoint
		case "concurrency":
			cfg.Lookup.Concurrency = *concurrency
		case "probe-website":
			cfg.Lookup.ProbeWebsite = *probeWebsite
		case "postgres-dsn":
			cfg.Database.DSN = *postgresDSN
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}

	if err := logger.Initialize(logger.Config{
		Debug:     cfg.Debug,
		SentryDSN: cfg.SentryDSN,
		Tags:      map[string]string{"service": serviceName},
	}); err != nil {
		fmt.Fprintln(stderr, err)
		return exitError
	}
	defer logger.Flush(2 * time.Second)

	a, cleanup, err := app.New(ctx, cfg, app.SnapshotsOff)
	if err != nil {
		logger.Error(err)
		fmt.Fprintln(stderr, err)
		return exitError
	}
	defer cleanup()

	start := time.Now()
	results, err := a.Service.Lookup(ctx, mints)
	elapsed := time.Since(start)
	if err != nil {
		logger.Warn("Lookup aborted", zap.Error(err), zap.Duration("elapsed", elapsed))
		fmt.Fprintln(stderr, "lookup aborted:", err)
		return exitError
	}

	p := printer{w: stdout, start: start}
	if *jsonOut {
		err = p.printJSON(results, elapsed)
	} else {
		p.printText(results, elapsed)
	}
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitError
	}
	return exitOK
}
