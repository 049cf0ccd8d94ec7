// Package db opens the upnext SQLite database and manages its schema.
package db

import (
	"database/sql"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // SQLite driver
)

const currentSchemaVersion = 1

// Open opens (creating if needed) the SQLite database at path and ensures the
// schema exists. ":memory:" opens a private in-memory database.
func Open(path string) (*sql.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One writer; also keeps ":memory:" on a single connection.
	db.SetMaxOpenConns(1)

	// Configure SQLite
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, err
		}
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS related_tracks (
			kind TEXT NOT NULL,
			seed TEXT NOT NULL,
			position INTEGER NOT NULL,
			track_id TEXT NOT NULL,
			source_url TEXT NOT NULL,
			title TEXT NOT NULL,
			artist TEXT NOT NULL,
			artwork TEXT,
			duration INTEGER NOT NULL DEFAULT 0,
			variants TEXT,
			fetched_at INTEGER NOT NULL,
			PRIMARY KEY (kind, seed, position)
		);

		CREATE INDEX IF NOT EXISTS idx_related_tracks_fetched ON related_tracks(fetched_at);
	`)
	if err != nil {
		return err
	}

	// Set initial version if not exists
	_, err = db.Exec(`
		INSERT OR IGNORE INTO schema_version (version) VALUES (?)
	`, currentSchemaVersion)
	return err
}
