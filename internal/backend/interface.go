package backend

import (
	"context"

	"kesho/internal/services"
	"kesho/internal/store"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// ReadyFunc reports whether the backend can serve requests.
type ReadyFunc func(ctx context.Context) error

// BackendResult is the wired persistence for one process. Publisher is nil
// when no broker is configured.
type BackendResult struct {
	Store     store.StateStore
	Publisher services.Publisher
	Ready     ReadyFunc
	Cleanup   CleanupFunc
}

// ServiceOptions returns the service options implied by the backend.
func (r *BackendResult) ServiceOptions() []services.Option {
	if r.Publisher == nil {
		return nil
	}
	return []services.Option{services.WithPublisher(r.Publisher)}
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Memory specific
	SeedStateFile string

	// Change events, optional for both backends
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
