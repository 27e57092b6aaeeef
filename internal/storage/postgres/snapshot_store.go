package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"solana-token-info/internal/domain"
	"solana-token-info/internal/observability"
	"solana-token-info/internal/storage"
)

// SnapshotStore implements storage.SnapshotStore using PostgreSQL.
type SnapshotStore struct {
	pool *Pool
}

// NewSnapshotStore creates a new SnapshotStore.
func NewSnapshotStore(pool *Pool) *SnapshotStore {
	return &SnapshotStore{pool: pool}
}

// Compile-time interface check.
var _ storage.SnapshotStore = (*SnapshotStore)(nil)

// Insert adds a new snapshot. Returns ErrDuplicateKey if id exists.
func (s *SnapshotStore) Insert(ctx context.Context, snap *domain.TokenSnapshot) (err error) {
	if err := storage.Validate(snap); err != nil {
		return err
	}

	start := time.Now()
	defer func() {
		observability.RecordDBQuery("postgres", "snapshot_insert", time.Since(start).Seconds(), err)
	}()

	query := `
		INSERT INTO token_snapshots (
			id, mint, outcome, name, symbol, uri, supply, decimals, payload, fetched_at
		) VALUES ($1::text::uuid, $2, $3, $4, $5, $6, $7::text::numeric, $8, $9, $10)
	`

	_, err = s.pool.Exec(ctx, query,
		snap.ID,
		snap.Mint,
		string(snap.Outcome),
		snap.Name,
		snap.Symbol,
		snap.URI,
		snap.Supply,
		snap.Decimals,
		snap.Payload,
		snap.FetchedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert token snapshot: %w", err)
	}
	return nil
}

// GetByID retrieves a snapshot by ID. Returns ErrNotFound if not exists.
func (s *SnapshotStore) GetByID(ctx context.Context, id string) (*domain.TokenSnapshot, error) {
	query := `
		SELECT id::text, mint, outcome, name, symbol, uri, supply::text, decimals, payload, fetched_at, created_at
		FROM token_snapshots
		WHERE id = $1::text::uuid
	`

	if _, err := uuid.Parse(id); err != nil {
		return nil, storage.ErrNotFound
	}

	row := s.pool.QueryRow(ctx, query, id)
	snap, err := scanSnapshot(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get token snapshot by id: %w", err)
	}
	return snap, nil
}

// ListByMint retrieves snapshots for a mint, newest fetched_at first.
func (s *SnapshotStore) ListByMint(ctx context.Context, mint string, limit int) (_ []*domain.TokenSnapshot, err error) {
	start := time.Now()
	defer func() {
		observability.RecordDBQuery("postgres", "snapshot_list", time.Since(start).Seconds(), err)
	}()

	query := `
		SELECT id::text, mint, outcome, name, symbol, uri, supply::text, decimals, payload, fetched_at, created_at
		FROM token_snapshots
		WHERE mint = $1
		ORDER BY fetched_at DESC, created_at DESC
	`
	args := []any{mint}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query token snapshots: %w", err)
	}
	defer rows.Close()

	var result []*domain.TokenSnapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan token snapshot: %w", err)
		}
		result = append(result, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate token snapshots: %w", err)
	}
	return result, nil
}

// scanSnapshot scans a single row into TokenSnapshot.
func scanSnapshot(row pgx.Row) (*domain.TokenSnapshot, error) {
	var (
		snap     domain.TokenSnapshot
		outcome  string
		decimals *int16
	)

	err := row.Scan(
		&snap.ID,
		&snap.Mint,
		&outcome,
		&snap.Name,
		&snap.Symbol,
		&snap.URI,
		&snap.Supply,
		&decimals,
		&snap.Payload,
		&snap.FetchedAt,
		&snap.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	snap.Outcome = domain.Outcome(outcome)
	if decimals != nil {
		d := int(*decimals)
		snap.Decimals = &d
	}
	return &snap, nil
}
