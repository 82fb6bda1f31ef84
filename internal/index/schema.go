// Package index keeps a SQLite projection of the record directory and
// serves it to the analytics layer as a read-only record list.
package index

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS records (
	id          TEXT PRIMARY KEY,
	path        TEXT NOT NULL UNIQUE,
	checksum    TEXT NOT NULL DEFAULT '',
	kind        TEXT NOT NULL,
	created_at  INTEGER NOT NULL,
	category    TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL DEFAULT '',
	full_name   TEXT NOT NULL DEFAULT '',
	zone        TEXT NOT NULL DEFAULT '',
	age         INTEGER,
	gender      TEXT NOT NULL DEFAULT '',
	employment  TEXT NOT NULL DEFAULT '',
	pwd         INTEGER NOT NULL DEFAULT 0,
	four_ps     INTEGER NOT NULL DEFAULT 0,
	solo_parent INTEGER NOT NULL DEFAULT 0,
	indexed_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_records_kind_created ON records(kind, created_at, id);
`

// DB wraps a sql.DB with index-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("index: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Ping reports whether the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
