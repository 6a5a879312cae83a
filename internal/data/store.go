// Package data selects and opens the key-value backend configured by STORAGE_DRIVER.
package data

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/khata-ledger/internal/config"
	"github.com/khata-ledger/internal/data/memory"
	"github.com/khata-ledger/internal/data/mongo"
	"github.com/khata-ledger/internal/data/postgres"
	"github.com/khata-ledger/internal/data/sqlite"
	"github.com/khata-ledger/internal/domain/kv"
	"github.com/khata-ledger/internal/platform/persistence"
)

// CloseFunc releases the connections held by a store
type CloseFunc func(ctx context.Context) error

// OpenStore connects to the configured backend, applying migrations where the backend has them
func OpenStore(ctx context.Context, logger *slog.Logger, cfg *config.Config) (kv.Store, CloseFunc, error) {
	logger = logger.With("driver", cfg.Storage.Driver)

	switch cfg.Storage.Driver {
	case config.DriverMemory:
		logger.Warn("Using in-memory storage, data is lost on exit")
		return memory.NewKVStore(), func(context.Context) error { return nil }, nil

	case config.DriverPostgres:
		db, err := persistence.NewPostgresDB(ctx, logger, &cfg.Postgres)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize PostgreSQL: %w", err)
		}
		closeFn := func(context.Context) error {
			db.Close()
			return nil
		}
		return postgres.NewKVStore(logger, db), closeFn, nil

	case config.DriverMongo:
		db, err := persistence.NewMongoDB(ctx, logger, &cfg.MongoDB)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize MongoDB: %w", err)
		}
		return mongo.NewKVStore(logger, db.KVCollection()), db.Close, nil

	case config.DriverSQLite:
		db, err := persistence.NewSQLiteDB(ctx, logger, &cfg.SQLite)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize SQLite: %w", err)
		}
		closeFn := func(context.Context) error { return db.Close() }
		return sqlite.NewKVStore(logger, db), closeFn, nil

	default:
		return nil, nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}
}
