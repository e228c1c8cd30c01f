package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"kesho/internal/store"
)

func newTestRepository(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "db", "kesho.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSQLiteRepository_LoadMissing(t *testing.T) {
	repo := newTestRepository(t)

	_, err := repo.Load(context.Background(), "kesho")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("Load() error = %v, want ErrNotFound", err)
	}
	if _, err := repo.Info(context.Background(), "kesho"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("Info() error = %v, want ErrNotFound", err)
	}
}

func TestSQLiteRepository_SaveOverwrites(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	if err := repo.Save(ctx, "kesho", []byte(`{"income":1}`)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := repo.Save(ctx, "kesho", []byte(`{"income":2}`)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := repo.Load(ctx, "kesho")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if string(got) != `{"income":2}` {
		t.Errorf("Load() = %s, want latest document", got)
	}

	info, err := repo.Info(ctx, "kesho")
	if err != nil {
		t.Fatalf("Info() error = %v", err)
	}
	if info.Revision != 2 {
		t.Errorf("Info().Revision = %d, want 2", info.Revision)
	}
	if info.UpdatedAt.IsZero() {
		t.Error("Info().UpdatedAt should be set")
	}
}

func TestSQLiteRepository_ReopenKeepsState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kesho.db")
	ctx := context.Background()

	repo, err := NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	if err := repo.Save(ctx, "kesho", []byte(`{"income":3}`)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	repo.Close()

	// Migrations must be idempotent on reopen.
	repo, err = NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer repo.Close()

	got, err := repo.Load(ctx, "kesho")
	if err != nil || string(got) != `{"income":3}` {
		t.Fatalf("Load() after reopen = %s, %v", got, err)
	}
}

func TestMigrateLedgerSchema_Idempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "kesho.db")

	first, err := MigrateLedgerSchema(dbPath)
	if err != nil {
		t.Fatalf("first migration: %v", err)
	}
	if first.Version != 1 || !first.Applied {
		t.Errorf("first run = %+v, want version 1 applied", first)
	}

	second, err := MigrateLedgerSchema(dbPath)
	if err != nil {
		t.Fatalf("second migration: %v", err)
	}
	if second.Version != 1 || second.Applied {
		t.Errorf("second run = %+v, want version 1 unchanged", second)
	}
}
