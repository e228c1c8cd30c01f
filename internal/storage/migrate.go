package storage

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// ledgerMigrations creates and evolves the ledger_state key-value table.
//
//go:embed migrations/*.sql
var ledgerMigrations embed.FS

// SchemaVersion is the ledger_state schema a database was brought up to.
type SchemaVersion struct {
	Version uint
	Applied bool // false when the database was already current
}

// MigrateLedgerSchema applies the embedded ledger_state migrations to the
// SQLite file at dbPath and reports the resulting version. A dirty schema,
// left behind by an interrupted migration, is an error: it needs a manual
// `migrate force` before the ledger can be trusted.
func MigrateLedgerSchema(dbPath string) (SchemaVersion, error) {
	// Separate connection: m.Close() closes the database it was handed.
	migrateDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return SchemaVersion{}, fmt.Errorf("open %s for ledger_state migrations: %w", dbPath, err)
	}
	defer migrateDB.Close()

	driver, err := sqlite.WithInstance(migrateDB, &sqlite.Config{})
	if err != nil {
		return SchemaVersion{}, fmt.Errorf("ledger_state migration driver: %w", err)
	}

	src, err := iofs.New(ledgerMigrations, "migrations")
	if err != nil {
		return SchemaVersion{}, fmt.Errorf("read embedded ledger_state migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return SchemaVersion{}, fmt.Errorf("prepare ledger_state migrations: %w", err)
	}
	defer m.Close()

	before, _, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return SchemaVersion{}, fmt.Errorf("read ledger_state schema version: %w", err)
	}

	applied := true
	if err := m.Up(); errors.Is(err, migrate.ErrNoChange) {
		applied = false
	} else if err != nil {
		return SchemaVersion{}, fmt.Errorf("migrate ledger_state from version %d: %w", before, err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return SchemaVersion{}, fmt.Errorf("read ledger_state schema version: %w", err)
	}
	if dirty {
		return SchemaVersion{}, fmt.Errorf("ledger_state schema version %d is dirty", version)
	}

	if applied {
		slog.Info("Migrated ledger_state schema", "from_version", before, "to_version", version, "path", dbPath)
	} else {
		slog.Debug("ledger_state schema current", "version", version, "path", dbPath)
	}
	return SchemaVersion{Version: version, Applied: applied}, nil
}
