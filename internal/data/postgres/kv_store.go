// Package postgres provides the PostgreSQL implementation of kv.Store.
// Every key is one row of the kv_store table holding a JSONB document.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/khata-ledger/internal/domain/kv"
	"github.com/khata-ledger/internal/platform/persistence"
)

// KVStore implements kv.Store on top of a pgx pool
type KVStore struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

var _ kv.Store = (*KVStore)(nil)

// NewKVStore creates a new PostgreSQL key-value store.
// It expects db.Pool() to satisfy persistence.Querier.
func NewKVStore(logger *slog.Logger, db *persistence.PostgresDB) *KVStore {
	return &KVStore{
		querier: db.Pool(),
		logger:  logger,
	}
}

// Get returns the document stored under key. A missing row is reported as absent, not as an error.
func (s *KVStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	query := `
		SELECT value
		FROM kv_store
		WHERE key = $1
	`

	var value []byte
	err := s.querier.QueryRow(ctx, query, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		s.logger.Error("Failed to get key", "key", key, "error", err)
		return nil, false, fmt.Errorf("failed to get key %s: %w", key, err)
	}

	return value, true, nil
}

// Set inserts or replaces the document stored under key
func (s *KVStore) Set(ctx context.Context, key string, value []byte) error {
	query := `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = NOW()
	`

	_, err := s.querier.Exec(ctx, query, key, value)
	if err != nil {
		s.logger.Error("Failed to set key", "key", key, "error", err)
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}

	return nil
}

// Remove deletes key. Removing a missing key is not an error.
func (s *KVStore) Remove(ctx context.Context, key string) error {
	query := `
		DELETE FROM kv_store
		WHERE key = $1
	`

	if _, err := s.querier.Exec(ctx, query, key); err != nil {
		s.logger.Error("Failed to remove key", "key", key, "error", err)
		return fmt.Errorf("failed to remove key %s: %w", key, err)
	}

	return nil
}
