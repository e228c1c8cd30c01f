package backend

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kesho/internal/config"
	"kesho/internal/core"
	"kesho/internal/store"
)

func TestFromAppConfig(t *testing.T) {
	cfg := &config.Config{
		DataBackend:   "sqlite",
		SQLiteDBPath:  "/tmp/kesho.db",
		SeedStateFile: "seed.json",
		AMQPURL:       "amqp://localhost:5672/",
		AMQPExchange:  "kesho",
		AMQPQueue:     "ledger_changed",
	}

	got, err := FromAppConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, SQLiteBackend, got.Type)
	assert.Equal(t, "/tmp/kesho.db", got.SQLiteDBPath)
	assert.Equal(t, "seed.json", got.SeedStateFile)
	assert.Equal(t, "kesho", got.AMQPExchange)

	_, err = FromAppConfig(nil)
	assert.Error(t, err)

	_, err = FromAppConfig(&config.Config{DataBackend: "sheets"})
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"memory", Config{Type: MemoryBackend}, false},
		{"sqlite with path", Config{Type: SQLiteBackend, SQLiteDBPath: "x.db"}, false},
		{"sqlite without path", Config{Type: SQLiteBackend}, true},
		{"unknown type", Config{Type: "postgres"}, true},
		{"amqp without queue", Config{Type: MemoryBackend, AMQPURL: "amqp://x/", AMQPExchange: "e"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			assert.Equal(t, tt.wantErr, err != nil, "Validate() error = %v", err)
		})
	}
}

func TestBackendTypeStrings(t *testing.T) {
	assert.Equal(t, []string{"memory", "sqlite"}, GetBackendTypeStrings())
}

func TestCreateMemoryBackend(t *testing.T) {
	ctx := context.Background()
	f := NewFactory(nil)

	result, err := f.CreateBackend(ctx, Config{Type: MemoryBackend})
	require.NoError(t, err)
	assert.Nil(t, result.Publisher)
	assert.Empty(t, result.ServiceOptions())
	require.NoError(t, result.Ready(ctx))

	_, err = result.Store.Load(ctx, core.StateKey)
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestCreateMemoryBackendFromSeed(t *testing.T) {
	ctx := context.Background()
	seed := filepath.Join(t.TempDir(), "seed.json")
	doc := `{"income":1000,"month":"2024-05","categories":[{"name":"Rent","group":"needs","budget":500,"spent":0,"transactions":[]}]}`
	require.NoError(t, os.WriteFile(seed, []byte(doc), 0o644))

	result, err := NewFactory(nil).CreateBackend(ctx, Config{Type: MemoryBackend, SeedStateFile: seed})
	require.NoError(t, err)

	data, err := result.Store.Load(ctx, core.StateKey)
	require.NoError(t, err)
	state, err := core.DecodeState(data)
	require.NoError(t, err)
	assert.Equal(t, "2024-05", state.Month)
}

func TestCreateSQLiteBackend(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "kesho.db")

	result, err := NewFactory(nil).CreateBackend(ctx, Config{Type: SQLiteBackend, SQLiteDBPath: dbPath})
	require.NoError(t, err)
	t.Cleanup(func() { _ = result.Cleanup() })

	require.NoError(t, result.Ready(ctx))
	require.NoError(t, result.Store.Save(ctx, core.StateKey, []byte(`{}`)))
	data, err := result.Store.Load(ctx, core.StateKey)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(data))
}
