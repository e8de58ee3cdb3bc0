// Package sqlite provides a SQLite-backed implementation of the storage ports.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3" // registers "sqlite3"
	_ "modernc.org/sqlite"          // registers "sqlite"

	"github.com/ewilliams-labs/nekolog/internal/core/ports"
)

// Supported database/sql driver names.
const (
	DriverCGO  = "sqlite3"
	DriverPure = "sqlite"
)

// Adapter implements the storage ports for SQLite.
type Adapter struct {
	db *sql.DB
}

var (
	_ ports.PreferenceStore = (*Adapter)(nil)
	_ ports.PhotoRepository = (*Adapter)(nil)
	_ ports.ArtifactStore   = (*Adapter)(nil)
)

// NewAdapter opens storagePath with driver ("sqlite3" or "sqlite"; empty
// selects "sqlite3") and runs the schema migration.
func NewAdapter(driver, storagePath string) (*Adapter, error) {
	switch driver {
	case "":
		driver = DriverCGO
	case DriverCGO, DriverPure:
	default:
		return nil, fmt.Errorf("sqlite: unknown driver %q", driver)
	}

	db, err := sql.Open(driver, storagePath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open db: %w", err)
	}
	// One writer; also keeps ":memory:" databases on a single connection.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: ping db: %w", err)
	}

	adapter := &Adapter{db: db}
	if err := adapter.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: migration failed: %w", err)
	}
	return adapter, nil
}

// Close closes the database.
func (a *Adapter) Close() error {
	return a.db.Close()
}

func (a *Adapter) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS preferences (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS photos (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		captured_at TEXT NOT NULL,
		user_caption TEXT NOT NULL DEFAULT '',
		assistant_caption TEXT NOT NULL DEFAULT '',
		image BLOB NOT NULL
	);

	CREATE TABLE IF NOT EXISTS artifacts (
		name TEXT PRIMARY KEY,
		image BLOB NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := a.db.Exec(query); err != nil {
		return err
	}

	// Columns added after the first schema.
	for _, stmt := range []string{
		"ALTER TABLE photos ADD COLUMN stage INTEGER NOT NULL DEFAULT 0",
		"ALTER TABLE photos ADD COLUMN user_layer BLOB",
		"ALTER TABLE photos ADD COLUMN composite BLOB",
	} {
		if _, err := a.db.Exec(stmt); err != nil && !isDuplicateColumnError(err) {
			return err
		}
	}
	return nil
}

func isDuplicateColumnError(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "duplicate column") || strings.Contains(err.Error(), "already exists"))
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
