// Package app wires configuration into a ready token lookup service.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"solana-token-info/internal/config"
	"solana-token-info/internal/logger"
	"solana-token-info/internal/offchain"
	"solana-token-info/internal/pda"
	"solana-token-info/internal/solana"
	"solana-token-info/internal/storage"
	"solana-token-info/internal/storage/memory"
	"solana-token-info/internal/storage/migrations"
	pgstore "solana-token-info/internal/storage/postgres"
	"solana-token-info/internal/tokeninfo"
)

// SnapshotMode selects where lookups are recorded.
type SnapshotMode int

const (
	// SnapshotsOff records nothing unless a database DSN is configured.
	SnapshotsOff SnapshotMode = iota
	// SnapshotsMemory falls back to an in-memory store without a DSN.
	SnapshotsMemory
)

// App holds the wired components.
type App struct {
	RPC       *solana.HTTPClient
	Service   *tokeninfo.Service
	Snapshots storage.SnapshotStore // nil when recording is off
}

// New builds an App from cfg. The returned cleanup must be called on exit.
func New(ctx context.Context, cfg *config.Config, mode SnapshotMode) (*App, func(), error) {
	rpc := solana.NewHTTPClient(cfg.RPC.Endpoint,
		solana.WithTimeout(cfg.RPC.Timeout),
		solana.WithMaxRetries(cfg.RPC.MaxRetries),
	)

	var resolverOpts []offchain.ResolverOption
	if cfg.Lookup.ProbeWebsite {
		resolverOpts = append(resolverOpts, offchain.WithWebsiteProbe(offchain.NewDNSProbe()))
	}
	resolver := offchain.NewResolver(
		offchain.NewHTTPClient(cfg.HTTP.Timeout),
		offchain.Config{
			IPFSGateways:    cfg.URI.IPFSGateways,
			ArweaveGateways: cfg.URI.ArweaveGateways,
		},
		resolverOpts...,
	)

	snapshots, cleanup, err := createSnapshotStore(ctx, cfg.Database.DSN, mode)
	if err != nil {
		return nil, nil, err
	}

	opts := []tokeninfo.Option{tokeninfo.WithConcurrency(cfg.Lookup.Concurrency)}
	if snapshots != nil {
		opts = append(opts, tokeninfo.WithRecorder(snapshots))
	}

	svc := tokeninfo.NewService(
		solana.NewAccountFetcher(rpc),
		pda.NewDeriver(),
		resolver,
		opts...,
	)

	logger.Info("Token lookup service ready",
		zap.String("rpc_endpoint", rpc.Endpoint()),
		zap.Int("concurrency", cfg.Lookup.Concurrency),
		zap.Bool("probe_website", cfg.Lookup.ProbeWebsite),
		zap.Bool("recording", snapshots != nil),
	)

	return &App{RPC: rpc, Service: svc, Snapshots: snapshots}, cleanup, nil
}

func createSnapshotStore(ctx context.Context, dsn string, mode SnapshotMode) (storage.SnapshotStore, func(), error) {
	if dsn == "" {
		if mode == SnapshotsMemory {
			return memory.NewSnapshotStore(), func() {}, nil
		}
		return nil, func() {}, nil
	}

	pool, err := pgstore.NewPool(ctx, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("run migrations: %w", err)
	}

	return pgstore.NewSnapshotStore(pool), pool.Close, nil
}
