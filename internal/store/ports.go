// Package store defines the key-value contract the ledger is persisted through.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Load when nothing has been saved under the key.
var ErrNotFound = errors.New("state not found")

// Ports for outbound adapters.
type (
	StateLoader interface {
		Load(ctx context.Context, key string) ([]byte, error)
	}

	StateSaver interface {
		// Save replaces the document stored under key. It must not return
		// before the write is durable.
		Save(ctx context.Context, key string, doc []byte) error
	}

	StateStore interface {
		StateLoader
		StateSaver
	}
)
