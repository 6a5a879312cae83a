package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/khata-ledger/internal/config"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteDB owns the database/sql handle of a local SQLite file
type SQLiteDB struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// NewSQLiteDB creates the parent directory, applies pending migrations and opens
// the file with foreign keys and WAL journaling enabled.
func NewSQLiteDB(ctx context.Context, logger *slog.Logger, cfg *config.SQLiteConfig) (*SQLiteDB, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlite path cannot be empty")
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	if err := RunMigrations("sqlite3://"+cfg.Path, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000", cfg.Path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	logger.Info("Opened SQLite database", "path", cfg.Path)

	return &SQLiteDB{
		db:     db,
		path:   cfg.Path,
		logger: logger,
	}, nil
}

func (s *SQLiteDB) DB() *sql.DB {
	return s.db
}

func (s *SQLiteDB) Path() string {
	return s.path
}

func (s *SQLiteDB) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close SQLite database: %w", err)
	}
	s.logger.Info("Closed SQLite database", "path", s.path)
	return nil
}
