package memory

import (
	"context"
	"sort"
	"sync"

	"solana-token-info/internal/domain"
	"solana-token-info/internal/storage"
)

// SnapshotStore is an in-memory implementation of storage.SnapshotStore.
type SnapshotStore struct {
	mu     sync.RWMutex
	byID   map[string]*domain.TokenSnapshot
	byMint map[string][]*domain.TokenSnapshot
	seq    int64
}

// NewSnapshotStore creates a new in-memory snapshot store.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{
		byID:   make(map[string]*domain.TokenSnapshot),
		byMint: make(map[string][]*domain.TokenSnapshot),
	}
}

// Insert adds a new snapshot. Returns ErrDuplicateKey if id already exists.
func (s *SnapshotStore) Insert(_ context.Context, snap *domain.TokenSnapshot) error {
	if err := storage.Validate(snap); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[snap.ID]; exists {
		return storage.ErrDuplicateKey
	}

	snapCopy := copySnapshot(snap)
	// CreatedAt doubles as insertion order for equal fetched_at values.
	s.seq++
	snapCopy.CreatedAt = s.seq
	s.byID[snap.ID] = snapCopy
	s.byMint[snap.Mint] = append(s.byMint[snap.Mint], snapCopy)
	return nil
}

// GetByID retrieves a snapshot by ID. Returns ErrNotFound if not exists.
func (s *SnapshotStore) GetByID(_ context.Context, id string) (*domain.TokenSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, exists := s.byID[id]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return copySnapshot(snap), nil
}

// ListByMint retrieves snapshots for a mint, newest first.
func (s *SnapshotStore) ListByMint(_ context.Context, mint string, limit int) ([]*domain.TokenSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.byMint[mint]
	result := make([]*domain.TokenSnapshot, 0, len(stored))
	for _, snap := range stored {
		result = append(result, copySnapshot(snap))
	}

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].FetchedAt != result[j].FetchedAt {
			return result[i].FetchedAt > result[j].FetchedAt
		}
		return result[i].CreatedAt > result[j].CreatedAt
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func copySnapshot(snap *domain.TokenSnapshot) *domain.TokenSnapshot {
	c := *snap
	if snap.Payload != nil {
		c.Payload = append([]byte(nil), snap.Payload...)
	}
	return &c
}

var _ storage.SnapshotStore = (*SnapshotStore)(nil)
