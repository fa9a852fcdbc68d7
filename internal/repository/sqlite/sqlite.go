// Package sqlite implements the repository interfaces on SQLite.
//
// The driver is modernc.org/sqlite: a pure Go translation of SQLite, so
// no C toolchain is needed and cross-compilation works everywhere Go
// does. The database is a single file (or ":memory:" in tests).
package sqlite

import (
	"database/sql"
	"fmt"

	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and implements the repository
// interfaces. The server owns it and closes it on shutdown.
type DB struct {
	conn *sql.DB
}

// New opens the database at dbPath (":memory:" for tests), configures it,
// and runs migrations.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets reads proceed while a write is in flight, which matters
	// for a web server sharing one database file across requests.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Off by default in SQLite; the card_tags association table relies on
	// referential integrity.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. All statements are idempotent, so running
// them on an existing database is safe.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS categories (
			id   TEXT PRIMARY KEY,
			name TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("creating categories table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS cards (
			id          TEXT PRIMARY KEY,
			question    TEXT NOT NULL,
			answer      TEXT NOT NULL DEFAULT '',
			category_id TEXT REFERENCES categories(id),
			views       INTEGER NOT NULL DEFAULT 0,
			adds        INTEGER NOT NULL DEFAULT 0,
			upload_date DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_cards_upload_date ON cards(upload_date);
		CREATE INDEX IF NOT EXISTS idx_cards_category_id ON cards(category_id);
	`)
	if err != nil {
		return fmt.Errorf("creating cards table: %w", err)
	}

	// Tag names are unique; GetOrCreateByName relies on this constraint.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS tags (
			id   TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE
		);
	`)
	if err != nil {
		return fmt.Errorf("creating tags table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS card_tags (
			card_id TEXT NOT NULL REFERENCES cards(id) ON DELETE CASCADE,
			tag_id  TEXT NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
			PRIMARY KEY (card_id, tag_id)
		);
		CREATE INDEX IF NOT EXISTS idx_card_tags_tag_id ON card_tags(tag_id);
	`)
	if err != nil {
		return fmt.Errorf("creating card_tags table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id         TEXT PRIMARY KEY,
			github_id  INTEGER NOT NULL UNIQUE,
			login      TEXT NOT NULL,
			email      TEXT NOT NULL DEFAULT '',
			avatar_url TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	return nil
}
