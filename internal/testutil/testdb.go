package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/alexanderramin/dealnotes/internal/db"
	"github.com/stretchr/testify/require"
)

// NewTestDB returns a migrated in-memory store, closed with the test.
func NewTestDB(t testing.TB) *sql.DB {
	t.Helper()
	return openTestStore(t, db.MemoryPath)
}

// NewFileTestDB returns a migrated store in a temp directory. Unlike the
// in-memory store it serves several pooled connections, so it is what
// concurrency tests need.
func NewFileTestDB(t testing.TB) *sql.DB {
	t.Helper()
	return openTestStore(t, filepath.Join(t.TempDir(), "dealnotes.db"))
}

func openTestStore(t testing.TB, path string) *sql.DB {
	t.Helper()
	database, err := db.OpenDB(path)
	require.NoError(t, err, "opening test store")
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func NewTestUoW(database *sql.DB) db.UnitOfWork {
	return db.NewSQLiteUnitOfWork(database)
}
