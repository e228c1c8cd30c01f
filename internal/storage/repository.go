package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"kesho/internal/store"

	_ "modernc.org/sqlite"
)

const (
	loadStateSQL = `SELECT document FROM ledger_state WHERE key = ?`

	saveStateSQL = `
INSERT INTO ledger_state (key, document, revision, updated_at)
VALUES (?, ?, 1, ?)
ON CONFLICT(key) DO UPDATE SET
    document   = excluded.document,
    revision   = ledger_state.revision + 1,
    updated_at = excluded.updated_at`

	stateInfoSQL = `SELECT revision, updated_at FROM ledger_state WHERE key = ?`
)

// SQLiteRepository stores ledger documents in a single key-value table.
type SQLiteRepository struct {
	db *sql.DB
}

// StateInfo describes the last write under a key.
type StateInfo struct {
	Revision  int64
	UpdatedAt time.Time
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One writer keeps SQLite from reporting SQLITE_BUSY under the service mutex.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := MigrateLedgerSchema(dbPath); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping implements the readiness check.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Load implements store.StateLoader.
func (r *SQLiteRepository) Load(ctx context.Context, key string) ([]byte, error) {
	var doc string
	err := r.db.QueryRowContext(ctx, loadStateSQL, key).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load state %q: %w", key, err)
	}
	return []byte(doc), nil
}

// Save implements store.StateSaver.
func (r *SQLiteRepository) Save(ctx context.Context, key string, doc []byte) error {
	if _, err := r.db.ExecContext(ctx, saveStateSQL, key, string(doc), time.Now().Unix()); err != nil {
		return fmt.Errorf("save state %q: %w", key, err)
	}

	slog.DebugContext(ctx, "Ledger state saved to SQLite",
		"key", key,
		"bytes", len(doc))

	return nil
}

// Info returns the revision counter and timestamp of the last save.
func (r *SQLiteRepository) Info(ctx context.Context, key string) (StateInfo, error) {
	var (
		info    StateInfo
		updated int64
	)
	err := r.db.QueryRowContext(ctx, stateInfoSQL, key).Scan(&info.Revision, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return StateInfo{}, store.ErrNotFound
	}
	if err != nil {
		return StateInfo{}, fmt.Errorf("state info %q: %w", key, err)
	}
	info.UpdatedAt = time.Unix(updated, 0).UTC()
	return info, nil
}
