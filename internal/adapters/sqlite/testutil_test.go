// Package sqlite_test contains integration tests for SQLite repositories.
//
// # Schema Protection
//
// This file is the single point where the database schema is loaded for tests.
// All test setup functions use db.GetSchemaSQL() so tests run against the
// authoritative schema. Do not hardcode CREATE TABLE statements in test files;
// use setupTestDB() and the seed* helpers.
package sqlite_test

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/skiphire/internal/db"
)

// setupTestDB creates an in-memory database with the authoritative schema.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	testDB.SetMaxOpenConns(1)

	// Use the authoritative schema from schema.go
	if _, err := testDB.Exec(db.GetSchemaSQL()); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// seedSkip inserts a minimal skip row.
func seedSkip(t *testing.T, database *sql.DB, id, size int, postcode string, forbidden bool) {
	t.Helper()
	_, err := database.Exec(
		`INSERT INTO skips (id, size, hire_period_days, price_before_vat, vat, postcode, forbidden)
		 VALUES (?, ?, 7, 100, 20, ?, ?)`,
		id, size, postcode, forbidden,
	)
	if err != nil {
		t.Fatalf("failed to seed skip: %v", err)
	}
}
