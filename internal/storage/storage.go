package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DBFile is the database filename inside a profile directory.
const DBFile = "blattwerk.db"

// PathIn returns the database path for a profile directory.
func PathIn(profileDir string) string {
	return filepath.Join(profileDir, DBFile)
}

// migration is a numbered schema change. Migrations are applied in order
// and tracked in the schema_migrations table so each runs exactly once.
type migration struct {
	Version     int
	Description string
	SQL         string
}

var migrations = []migration{
	{
		Version:     1,
		Description: "initial schema",
		SQL: `
CREATE TABLE IF NOT EXISTS bookmarks (
    id          INTEGER PRIMARY KEY,
    url         TEXT UNIQUE NOT NULL,
    title       TEXT DEFAULT '',
    created_at  DATETIME DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE IF NOT EXISTS visits (
    id          INTEGER PRIMARY KEY,
    url         TEXT NOT NULL,
    title       TEXT DEFAULT '',
    tab_id      TEXT DEFAULT '',
    visited_at  DATETIME DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE IF NOT EXISTS sessions (
    id           INTEGER PRIMARY KEY,
    name         TEXT,
    profile      TEXT NOT NULL,
    saved_at     DATETIME DEFAULT CURRENT_TIMESTAMP,
    active_index INTEGER NOT NULL DEFAULT 0,
    tab_count    INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS session_tabs (
    id            INTEGER PRIMARY KEY,
    session_id    INTEGER NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
    position      INTEGER NOT NULL,
    tab_id        TEXT NOT NULL,
    url           TEXT NOT NULL,
    title         TEXT DEFAULT '',
    history       TEXT NOT NULL DEFAULT '[]',
    history_index INTEGER NOT NULL DEFAULT 0
);`,
	},
	{
		Version:     2,
		Description: "dedupe named sessions: one per profile and name",
		SQL: `
ALTER TABLE sessions RENAME TO sessions_old;

CREATE TABLE sessions (
    id           INTEGER PRIMARY KEY,
    name         TEXT,
    profile      TEXT NOT NULL,
    saved_at     DATETIME DEFAULT CURRENT_TIMESTAMP,
    active_index INTEGER NOT NULL DEFAULT 0,
    tab_count    INTEGER NOT NULL,
    UNIQUE(profile, name)
);

-- Keep the newest row per (profile, name); unnamed sessions all survive
-- since NULLs compare distinct.
INSERT INTO sessions (id, name, profile, saved_at, active_index, tab_count)
SELECT id, name, profile, saved_at, active_index, tab_count
FROM sessions_old
WHERE name IS NULL
   OR id IN (
       SELECT MAX(id) FROM sessions_old WHERE name IS NOT NULL GROUP BY profile, name
   );

-- Orphaned tabs from dropped duplicates go with them.
DELETE FROM session_tabs WHERE session_id NOT IN (SELECT id FROM sessions);

DROP TABLE sessions_old;`,
	},
	{
		Version:     3,
		Description: "index visits for history listing and top sites",
		SQL: `
CREATE INDEX idx_visits_visited_at ON visits(visited_at DESC);
CREATE INDEX idx_visits_url ON visits(url);`,
	},
}

// OpenDB opens (or creates) a SQLite database at the given path.
// It creates parent directories if needed, enables foreign keys and WAL mode,
// and runs any pending migrations.
func OpenDB(path string) (*sql.DB, error) {
	// Create parent directory if needed.
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable foreign keys.
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	// Enable WAL mode for better concurrency.
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	// Run migrations.
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return db, nil
}

// runMigrations ensures the schema_migrations table exists, detects which
// migrations have already been applied, and runs any pending ones.
func runMigrations(db *sql.DB) error {
	// Create the migrations tracking table.
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version     INTEGER PRIMARY KEY,
		description TEXT NOT NULL,
		applied_at  DATETIME DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		return fmt.Errorf("create schema_migrations table: %w", err)
	}

	// Apply pending migrations in order.
	for _, m := range migrations {
		var exists int
		err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations WHERE version = ?", m.Version).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check migration %d: %w", m.Version, err)
		}
		if exists > 0 {
			continue
		}

		if _, err := db.Exec(m.SQL); err != nil {
			return fmt.Errorf("apply migration %d (%s): %w", m.Version, m.Description, err)
		}
		if _, err := db.Exec(
			"INSERT INTO schema_migrations (version, description) VALUES (?, ?)",
			m.Version, m.Description,
		); err != nil {
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}
	}

	return nil
}
