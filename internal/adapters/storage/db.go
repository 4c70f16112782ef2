package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrNotFound is wrapped by every store when a lookup by id matches no row.
var ErrNotFound = errors.New("not found")

// ErrConflict is wrapped when a write would break a uniqueness rule.
var ErrConflict = errors.New("conflict")

// SchemaVersion is bumped whenever schema changes shape.
const SchemaVersion = 1

const schema = `
	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS program (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		type TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS class_type (
		id TEXT PRIMARY KEY,
		program_id TEXT NOT NULL,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		level TEXT NOT NULL DEFAULT '',
		color TEXT NOT NULL DEFAULT '',
		capacity INTEGER NOT NULL DEFAULT 0,
		FOREIGN KEY (program_id) REFERENCES program(id)
	);

	CREATE TABLE IF NOT EXISTS coach (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		active INTEGER NOT NULL DEFAULT 1
	);

	CREATE TABLE IF NOT EXISTS schedule (
		id TEXT PRIMARY KEY,
		class_type_id TEXT NOT NULL,
		coach_id TEXT NOT NULL DEFAULT '',
		day TEXT NOT NULL,
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		FOREIGN KEY (class_type_id) REFERENCES class_type(id)
	);

	CREATE TABLE IF NOT EXISTS class_session (
		id TEXT PRIMARY KEY,
		schedule_id TEXT NOT NULL DEFAULT '',
		class_type_id TEXT NOT NULL,
		coach_id TEXT NOT NULL DEFAULT '',
		date TEXT NOT NULL,
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		status TEXT NOT NULL,
		note TEXT NOT NULL DEFAULT '',
		FOREIGN KEY (class_type_id) REFERENCES class_type(id)
	);

	CREATE INDEX IF NOT EXISTS idx_class_session_date ON class_session(date);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_class_session_override ON class_session(schedule_id, date) WHERE schedule_id != '';
	CREATE INDEX IF NOT EXISTS idx_class_session_coach ON class_session(coach_id);

	CREATE TABLE IF NOT EXISTS term (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS holiday (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		source TEXT NOT NULL DEFAULT 'manual'
	);

	CREATE INDEX IF NOT EXISTS idx_holiday_source ON holiday(source);
	`

// InitDB initializes the database schema.
// PRE: db is a valid database connection
// POST: All tables are created, WAL mode enabled, schema_version recorded
func InitDB(db *sql.DB) error {
	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	// Enable foreign key enforcement
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	version, err := CurrentVersion(context.Background(), db)
	if err != nil {
		return err
	}
	if version == 0 {
		if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (?)", SchemaVersion); err != nil {
			return fmt.Errorf("failed to record schema version: %w", err)
		}
	}
	return nil
}

// DeleteByID removes the row of table with the given id.
// PRE: table is a trusted constant, never request input
// POST: Returns an error wrapping ErrNotFound when no row matched
func DeleteByID(ctx context.Context, db SQLDB, table, id string) error {
	res, err := db.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", table, id, ErrNotFound)
	}
	return nil
}

// CurrentVersion returns the recorded schema version, or 0 on a fresh database.
// PRE: schema_version table exists
// POST: Returns the highest recorded version
func CurrentVersion(ctx context.Context, db SQLDB) (int, error) {
	var version sql.NullInt64
	if err := db.QueryRowContext(ctx, "SELECT MAX(version) FROM schema_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return int(version.Int64), nil
}
