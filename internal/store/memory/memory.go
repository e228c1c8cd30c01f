package memory

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"sync"

	"kesho/internal/core"
	"kesho/internal/store"
)

// Store keeps documents in process memory. Nothing survives a restart.
type Store struct {
	mu   sync.Mutex
	docs map[string][]byte
}

func New() *Store {
	return &Store{docs: make(map[string][]byte)}
}

// NewFromFile seeds the ledger document from a JSON file. A missing file
// yields an empty store so the ledger starts from the default categories.
func NewFromFile(path string) (*Store, error) {
	s := New()
	if path == "" {
		return s, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read seed state: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return s, nil
	}
	if _, err := core.DecodeState(data); err != nil {
		return nil, fmt.Errorf("seed state %s: %w", path, err)
	}
	s.docs[core.StateKey] = data
	return s, nil
}

// Load implements store.StateLoader.
func (s *Store) Load(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	return bytes.Clone(doc), nil
}

// Save implements store.StateSaver.
func (s *Store) Save(_ context.Context, key string, doc []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[key] = bytes.Clone(doc)
	return nil
}
