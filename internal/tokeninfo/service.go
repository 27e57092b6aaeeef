// Package tokeninfo aggregates on-chain and off-chain information for a batch
// of SPL token mints.
package tokeninfo

import (
	"context"
	"fmt"
	"time"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"

	"solana-token-info/internal/domain"
	"solana-token-info/internal/layout"
	"solana-token-info/internal/logger"
	"solana-token-info/internal/observability"
	"solana-token-info/internal/solana"
	"solana-token-info/internal/storage"
)

// AccountFetcher reads raw ledger accounts.
type AccountFetcher interface {
	Fetch(ctx context.Context, addr domain.PublicKey) (solana.Account, error)
}

// AddressDeriver derives the metadata account address for a mint.
type AddressDeriver interface {
	MetadataAddress(mint domain.PublicKey) (domain.PublicKey, uint8, error)
}

// DocumentResolver fetches the off-chain document behind a metadata URI.
// It returns nil, nil for an empty URI.
type DocumentResolver interface {
	Resolve(ctx context.Context, uri string) (*domain.OffchainMetadata, error)
}

// Service looks up token information. It is safe for concurrent use; the
// collaborators it holds are shared read-only by every pipeline.
type Service struct {
	accounts    AccountFetcher
	deriver     AddressDeriver
	resolver    DocumentResolver
	recorder    storage.SnapshotStore
	concurrency int
	now         func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithConcurrency bounds the number of mints processed at once.
// 0 runs one worker per requested mint.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		s.concurrency = n
	}
}

// WithRecorder persists every completed lookup as a snapshot.
func WithRecorder(store storage.SnapshotStore) Option {
	return func(s *Service) {
		s.recorder = store
	}
}

// WithClock overrides the time source for FetchedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a Service.
func NewService(accounts AccountFetcher, deriver AddressDeriver, resolver DocumentResolver, opts ...Option) *Service {
	s := &Service{
		accounts: accounts,
		deriver:  deriver,
		resolver: resolver,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Lookup returns one TokenInfo per id, in input order. Duplicate ids are
// processed independently. A failure for one id never affects another.
// If ctx is cancelled before every lookup finishes, Lookup returns ctx.Err()
// and no results.
func (s *Service) Lookup(ctx context.Context, ids []domain.PublicKey) ([]domain.TokenInfo, error) {
	if len(ids) == 0 {
		return []domain.TokenInfo{}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()

	workers := s.concurrency
	if workers <= 0 || workers > len(ids) {
		workers = len(ids)
	}

	pool := pond.NewResultPool[domain.TokenInfo](workers, pond.WithContext(ctx))
	defer pool.StopAndWait()

	group := pool.NewGroup()
	for i, id := range ids {
		taskCtx := logger.WithFields(ctx, zap.String("mint", id.String()), zap.Int("index", i))
		group.Submit(func() domain.TokenInfo {
			return s.lookupOne(taskCtx, id)
		})
	}

	results, err := group.Wait()
	if ctxErr := ctx.Err(); ctxErr != nil {
		observability.RecordBatchAborted()
		logger.WarnCtx(ctx, "Lookup cancelled, discarding results",
			zap.Int("mints", len(ids)), zap.Error(ctxErr))
		return nil, ctxErr
	}
	if err != nil {
		return nil, fmt.Errorf("lookup pool: %w", err)
	}

	for i := range results {
		observability.RecordLookup(string(results[i].Outcome))
		for _, issue := range results[i].Issues {
			observability.RecordStageFailure(string(issue.Stage), string(issue.Reason))
		}
	}
	s.record(ctx, results)

	observability.RecordBatch(len(ids), time.Since(start).Seconds(), s.now().Unix())
	logger.InfoCtx(ctx, "Lookup complete",
		zap.Int("mints", len(ids)),
		zap.Int("workers", workers),
		zap.Duration("elapsed", time.Since(start)))

	return results, nil
}

// LookupOne runs the pipeline for a single mint.
func (s *Service) LookupOne(ctx context.Context, id domain.PublicKey) (domain.TokenInfo, error) {
	results, err := s.Lookup(ctx, []domain.PublicKey{id})
	if err != nil {
		return domain.TokenInfo{}, err
	}
	return results[0], nil
}

// lookupOne runs mint → derive → metadata → uri, stopping at the first
// failing stage. Only a mint failure yields OutcomeFailed.
func (s *Service) lookupOne(ctx context.Context, id domain.PublicKey) (info domain.TokenInfo) {
	info = domain.TokenInfo{
		Mint:    id,
		Outcome: domain.OutcomeFull,
	}
	defer func() {
		info.FetchedAt = s.now().UnixMilli()
	}()

	mintAcc, err := s.fetchMint(ctx, id)
	if err != nil {
		s.fail(ctx, &info, domain.StageMint, domain.OutcomeFailed, err)
		return info
	}
	info.MintAccount = mintAcc

	addr, _, err := s.deriver.MetadataAddress(id)
	if err != nil {
		s.fail(ctx, &info, domain.StageDerive, domain.OutcomePartial, err)
		return info
	}
	info.MetadataAddress = &addr

	acc, err := s.accounts.Fetch(ctx, addr)
	if err != nil {
		s.fail(ctx, &info, domain.StageMetadataFetch, domain.OutcomePartial, err)
		return info
	}
	if acc.State == solana.AccountMissing {
		s.fail(ctx, &info, domain.StageMetadataFetch, domain.OutcomePartial,
			fmt.Errorf("%w: metadata account %s", domain.ErrAccountNotFound, addr))
		return info
	}

	md, err := layout.DecodeMetadata(acc.Data, id)
	if err != nil {
		s.fail(ctx, &info, domain.StageMetadataDecode, domain.OutcomePartial, err)
		return info
	}
	info.Metadata = md

	doc, err := s.resolver.Resolve(ctx, md.URI)
	if err != nil {
		s.fail(ctx, &info, domain.StageURI, domain.OutcomePartial, err)
		return info
	}
	info.Offchain = doc

	logger.DebugCtx(ctx, "Token resolved",
		zap.String("name", md.Name),
		zap.String("symbol", md.Symbol),
		zap.Bool("offchain", doc != nil))
	return info
}

func (s *Service) fetchMint(ctx context.Context, id domain.PublicKey) (*domain.MintAccount, error) {
	acc, err := s.accounts.Fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if acc.State == solana.AccountMissing {
		return nil, fmt.Errorf("%w: mint account %s", domain.ErrAccountNotFound, id)
	}
	return layout.DecodeMint(acc.Data)
}

func (s *Service) fail(ctx context.Context, info *domain.TokenInfo, stage domain.Stage, outcome domain.Outcome, err error) {
	issue := domain.StageIssue{
		Stage:   stage,
		Reason:  domain.ReasonOf(err),
		Message: err.Error(),
	}
	info.Outcome = outcome
	info.Issues = append(info.Issues, issue)

	logger.WarnCtx(ctx, "Lookup stage failed",
		zap.String("stage", string(stage)),
		zap.String("reason", string(issue.Reason)),
		zap.String("outcome", string(outcome)),
		zap.Error(err))
}

// record writes snapshots. Failures are logged and never change results.
func (s *Service) record(ctx context.Context, results []domain.TokenInfo) {
	if s.recorder == nil {
		return
	}
	for i := range results {
		snap, err := storage.NewSnapshot(&results[i])
		if err == nil {
			err = s.recorder.Insert(ctx, snap)
		}
		observability.RecordSnapshot(err)
		if err != nil {
			logger.ErrorCtx(ctx, fmt.Errorf("record snapshot: %w", err),
				zap.String("mint", results[i].Mint.String()))
		}
	}
}
