// Package storagetest opens migrated in-memory databases for store tests.
package storagetest

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"

	"zefit/internal/adapters/storage"
)

// Open returns a fresh, migrated in-memory SQLite database.
// The pool is pinned to one connection because every :memory: connection
// is a separate database.
func Open(t *testing.T) *storage.TimedDB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:?_pragma=foreign_keys(1)")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	if err := storage.InitDB(db, storage.DialectSQLite); err != nil {
		t.Fatalf("failed to init test db: %v", err)
	}
	return storage.NewTimedDB(db, storage.DialectSQLite, nil)
}

// Exec runs a raw statement and fails the test on error.
func Exec(t *testing.T, db storage.SQLDB, query string, args ...any) {
	t.Helper()
	if _, err := db.ExecContext(t.Context(), query, args...); err != nil {
		t.Fatalf("exec %q: %v", query, err)
	}
}

// Count returns SELECT COUNT(*) for the given table and where clause.
func Count(t *testing.T, db storage.SQLDB, table, where string, args ...any) int {
	t.Helper()
	q := "SELECT COUNT(*) FROM " + table
	if where != "" {
		q += " WHERE " + where
	}
	var n int
	if err := db.QueryRowContext(t.Context(), q, args...).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

// SeedMember inserts an active member with card code "C-<id>".
func SeedMember(t *testing.T, db storage.SQLDB, id, fullName string) {
	t.Helper()
	Exec(t, db, "INSERT INTO member (id, card_code, full_name, status, created_at) VALUES (?, ?, ?, 'active', '2025-01-01T00:00:00.000Z')",
		id, "C-"+id, fullName)
}
