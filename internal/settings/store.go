// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package settings

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jeranaias/codequill/internal/util"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrNotConfigured is returned when no settings record exists.
	ErrNotConfigured = errors.New("not configured")
)

// =============================================================================
// SETTINGS RECORD
// =============================================================================

// Settings is the persisted per-user record.
type Settings struct {
	APIKey    string
	Model     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MaskedKey returns the API key in display-safe form. The full key is
// never rendered or logged.
func (s *Settings) MaskedKey() string {
	return util.MaskSecret(s.APIKey)
}

// =============================================================================
// STORE
// =============================================================================

// Store persists the settings record in a SQLite database file.
// The database is opened lazily so that /clean can remove the file and
// a later /setup can recreate it through the same Store.
type Store struct {
	mu   sync.Mutex
	path string
	db   *sql.DB
}

// Open creates a Store for the database at path. The file itself is
// only created on first write.
func Open(path string) *Store {
	return &Store{path: path}
}

// DefaultPath returns the settings database path under the given
// config directory.
func DefaultPath(configDir string) string {
	return filepath.Join(configDir, "settings.db")
}

// Path returns the backing database file path.
func (st *Store) Path() string {
	return st.path
}

// ensure opens the database handle and creates the schema if needed.
// Caller must hold st.mu.
func (st *Store) ensure() (*sql.DB, error) {
	if st.db != nil {
		return st.db, nil
	}

	if err := os.MkdirAll(filepath.Dir(st.path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create settings directory: %w", err)
	}

	db, err := sql.Open("sqlite", st.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open settings database: %w", err)
	}

	const schema = `
		CREATE TABLE IF NOT EXISTS settings (
			id         INTEGER PRIMARY KEY CHECK (id = 1),
			api_key    TEXT NOT NULL,
			model      TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create settings schema: %w", err)
	}

	// Settings hold the API key; keep the file owner-only.
	if err := os.Chmod(st.path, 0600); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set settings file permissions: %w", err)
	}

	st.db = db
	return db, nil
}

// Exists reports whether a settings record is present. A missing or
// unreadable database counts as not configured.
func (st *Store) Exists() bool {
	st.mu.Lock()
	defer st.mu.Unlock()

	if _, err := os.Stat(st.path); err != nil {
		return false
	}
	db, err := st.ensure()
	if err != nil {
		return false
	}

	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM settings WHERE id = 1`).Scan(&n); err != nil {
		return false
	}
	return n > 0
}

// Load returns the settings record, or ErrNotConfigured when none
// exists.
func (st *Store) Load() (*Settings, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if _, err := os.Stat(st.path); err != nil {
		return nil, ErrNotConfigured
	}
	db, err := st.ensure()
	if err != nil {
		return nil, err
	}

	var s Settings
	var created, updated string
	row := db.QueryRow(`SELECT api_key, model, created_at, updated_at FROM settings WHERE id = 1`)
	if err := row.Scan(&s.APIKey, &s.Model, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotConfigured
		}
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	s.CreatedAt, _ = time.Parse(time.RFC3339, created)
	s.UpdatedAt, _ = time.Parse(time.RFC3339, updated)
	return &s, nil
}

// Save writes the settings record, overwriting any prior value. The
// original creation timestamp is preserved on overwrite. The write is
// a single transaction: it fully replaces the record or leaves the old
// one untouched.
func (st *Store) Save(apiKey, model string) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	db, err := st.ensure()
	if err != nil {
		return err
	}

	now := time.Now().UTC().Format(time.RFC3339)

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin settings write: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO settings (id, api_key, model, created_at, updated_at)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			api_key    = excluded.api_key,
			model      = excluded.model,
			updated_at = excluded.updated_at`,
		apiKey, model, now, now)
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit settings: %w", err)
	}
	return nil
}

// Destroy closes the database and removes the backing file. It reports
// whether a file was actually removed; a missing file is not an error.
// The Store remains usable: a later Save recreates the database.
func (st *Store) Destroy() (bool, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.db != nil {
		st.db.Close()
		st.db = nil
	}

	removed, err := util.RemoveIfExists(st.path)
	if err != nil {
		return false, fmt.Errorf("failed to remove settings database: %w", err)
	}

	// SQLite sidecar files, best effort.
	util.RemoveIfExists(st.path + "-wal")
	util.RemoveIfExists(st.path + "-shm")

	return removed, nil
}

// Close releases the database handle.
func (st *Store) Close() error {
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.db == nil {
		return nil
	}
	err := st.db.Close()
	st.db = nil
	return err
}
