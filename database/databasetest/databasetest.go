// Package databasetest provides a migrated in-memory SQLite database for tests.
package databasetest

import (
	"context"
	"testing"

	"contact-book/config"
	"contact-book/database"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// New returns a fresh, migrated in-memory database closed at test cleanup.
// The pool is pinned to one connection: every :memory: connection is a separate database.
func New(t testing.TB) *sqlx.DB {
	t.Helper()

	db, err := sqlx.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if err := database.Migrate(context.Background(), db, config.DialectSQLite); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}
