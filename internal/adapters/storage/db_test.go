package storage

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"testing"

	_ "modernc.org/sqlite"
)

// openTestDB creates an in-memory SQLite database for testing.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

// getTableNames returns sorted table names from sqlite_master, excluding internal tables.
func getTableNames(t *testing.T, db *sql.DB) []string {
	t.Helper()
	rows, err := db.Query("SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' ORDER BY name")
	if err != nil {
		t.Fatalf("failed to query sqlite_master: %v", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("failed to scan table name: %v", err)
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var expectedTables = []string{
	"class_session",
	"class_type",
	"coach",
	"holiday",
	"program",
	"schedule",
	"schema_version",
	"term",
}

// TestInitDB_Fresh verifies the schema applies cleanly to an empty database.
func TestInitDB_Fresh(t *testing.T) {
	db := openTestDB(t)

	if err := InitDB(db); err != nil {
		t.Fatalf("InitDB failed on fresh db: %v", err)
	}

	tables := getTableNames(t, db)
	if len(tables) != len(expectedTables) {
		t.Fatalf("got %d tables, want %d\ngot:  %v\nwant: %v", len(tables), len(expectedTables), tables, expectedTables)
	}
	for i, want := range expectedTables {
		if tables[i] != want {
			t.Errorf("table[%d] = %q, want %q", i, tables[i], want)
		}
	}

	version, err := CurrentVersion(context.Background(), db)
	if err != nil {
		t.Fatalf("CurrentVersion: %v", err)
	}
	if version != SchemaVersion {
		t.Errorf("version = %d, want %d", version, SchemaVersion)
	}
}

// TestInitDB_Idempotent verifies that running InitDB twice keeps data and a single version row.
func TestInitDB_Idempotent(t *testing.T) {
	db := openTestDB(t)

	if err := InitDB(db); err != nil {
		t.Fatalf("first InitDB failed: %v", err)
	}
	if _, err := db.Exec("INSERT INTO program (id, name, type) VALUES ('p1', 'Adults', 'adults')"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := InitDB(db); err != nil {
		t.Fatalf("second InitDB failed: %v", err)
	}

	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM schema_version").Scan(&n); err != nil {
		t.Fatalf("count versions: %v", err)
	}
	if n != 1 {
		t.Errorf("schema_version rows = %d, want 1", n)
	}
	var name string
	if err := db.QueryRow("SELECT name FROM program WHERE id = 'p1'").Scan(&name); err != nil {
		t.Fatalf("program lost after re-init: %v", err)
	}
}

// TestInitDB_ForeignKeys verifies class types cannot reference a missing program.
func TestInitDB_ForeignKeys(t *testing.T) {
	db := openTestDB(t)
	if err := InitDB(db); err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	_, err := db.Exec("INSERT INTO class_type (id, program_id, name) VALUES ('ct1', 'missing', 'Fundamentals')")
	if err == nil {
		t.Fatal("expected foreign key violation")
	}
}

// TestDeleteByID verifies deletes report missing rows.
func TestDeleteByID(t *testing.T) {
	db := openTestDB(t)
	if err := InitDB(db); err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	ctx := context.Background()
	if _, err := db.Exec("INSERT INTO coach (id, name, email, active) VALUES ('c1', 'Sam', '', 1)"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := DeleteByID(ctx, db, "coach", "c1"); err != nil {
		t.Fatalf("DeleteByID: %v", err)
	}
	if err := DeleteByID(ctx, db, "coach", "c1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete error = %v, want ErrNotFound", err)
	}
}
