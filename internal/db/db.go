package db

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// BusyTimeout is how long a connection waits on a competing writer before
// SQLite reports the database as locked.
const BusyTimeout = 5 * time.Second

// dsn appends connection pragmas to path. Pragmas given in the DSN run on
// every pooled connection, unlike a one-off Exec on the pool.
func dsn(path string) string {
	q := url.Values{}
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", BusyTimeout.Milliseconds()))
	if path != MemoryPath {
		q.Add("_pragma", "journal_mode(WAL)")
		// Writers take the lock at BEGIN so two read-then-write
		// transactions cannot deadlock on the upgrade.
		q.Set("_txlock", "immediate")
	}
	return path + "?" + q.Encode()
}

// OpenDB opens the store at path, creating its directory when needed, and
// brings the schema up to date.
func OpenDB(path string) (*sql.DB, error) {
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	database, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", path, err)
	}
	if path == MemoryPath {
		// Each connection to :memory: is a separate empty database.
		database.SetMaxOpenConns(1)
	}

	if err := database.Ping(); err != nil {
		database.Close()
		return nil, fmt.Errorf("opening database %s: %w", path, err)
	}
	if err := Migrate(database); err != nil {
		database.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return database, nil
}
