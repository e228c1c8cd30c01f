package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"kesho/internal/core"
	"kesho/internal/store"
)

func TestMemoryStoreSaveAndLoad(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, err := s.Load(ctx, core.StateKey); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	doc := []byte(`{"income":1}`)
	if err := s.Save(ctx, core.StateKey, doc); err != nil {
		t.Fatalf("save: %v", err)
	}
	doc[0] = 'X' // caller mutation must not leak into the store

	got, err := s.Load(ctx, core.StateKey)
	if err != nil || string(got) != `{"income":1}` {
		t.Fatalf("unexpected load: %q err=%v", got, err)
	}
}

func TestNewFromFileSeeds(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	// Missing file -> empty store
	s, err := NewFromFile(filepath.Join(dir, "missing.json"))
	if err != nil {
		t.Fatalf("missing seed: %v", err)
	}
	if _, err := s.Load(ctx, core.StateKey); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected empty store, got %v", err)
	}

	mustWrite := func(name, content string) string {
		t.Helper()
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		return path
	}

	seed := `{"income": 1000, "month": "2024-05", "categories": [{"name": "Rent", "group": "needs", "budget": 500, "spent": 0}]}`
	s, err = NewFromFile(mustWrite("seed.json", seed))
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	got, err := s.Load(ctx, core.StateKey)
	if err != nil || string(got) != seed {
		t.Fatalf("unexpected seeded doc: %q err=%v", got, err)
	}

	bad := `{"income": 1000, "categories": [{"name": "Rent", "group": "needs", "spent": 10}]}`
	if _, err := NewFromFile(mustWrite("bad.json", bad)); !errors.Is(err, core.ErrCorruptState) {
		t.Fatalf("expected corrupt seed to be rejected, got %v", err)
	}
}
