package storage

import (
	"context"

	"solana-token-info/internal/domain"
)

// SnapshotStore provides access to token_snapshots storage.
// Snapshots are append-only audit history of lookups.
type SnapshotStore interface {
	// Insert adds a new snapshot. Returns ErrDuplicateKey if id exists.
	Insert(ctx context.Context, s *domain.TokenSnapshot) error

	// GetByID retrieves a snapshot by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, id string) (*domain.TokenSnapshot, error)

	// ListByMint retrieves snapshots for a mint, newest fetched_at first.
	// limit <= 0 returns every snapshot.
	ListByMint(ctx context.Context, mint string, limit int) ([]*domain.TokenSnapshot, error)
}
