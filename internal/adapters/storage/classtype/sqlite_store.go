package classtype

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gymboard/internal/adapters/storage"
	domain "gymboard/internal/domain/classtype"
)

const selectColumns = "SELECT id, program_id, name, description, level, color, capacity FROM class_type"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new ClassTypeStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

type scanner func(dest ...any) error

func scanClassType(scan scanner) (domain.ClassType, error) {
	var entity domain.ClassType
	err := scan(&entity.ID, &entity.ProgramID, &entity.Name, &entity.Description, &entity.Level, &entity.Color, &entity.Capacity)
	return entity, err
}

// GetByID retrieves a ClassType by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error wrapping storage.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.ClassType, error) {
	entity, err := scanClassType(s.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ClassType{}, fmt.Errorf("class type %s: %w", id, storage.ErrNotFound)
	}
	return entity, err
}

// Save persists a ClassType to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.ClassType) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO class_type (id, program_id, name, description, level, color, capacity)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			program_id=excluded.program_id, name=excluded.name, description=excluded.description,
			level=excluded.level, color=excluded.color, capacity=excluded.capacity`,
		entity.ID, entity.ProgramID, entity.Name, entity.Description, entity.Level, entity.Color, entity.Capacity,
	)
	return err
}

// Delete removes a ClassType from the database.
// PRE: id is non-empty
// POST: Row removed, or an error wrapping storage.ErrNotFound
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	return storage.DeleteByID(ctx, s.db, "class_type", id)
}

// List retrieves all ClassTypes ordered by name.
func (s *SQLiteStore) List(ctx context.Context) ([]domain.ClassType, error) {
	return s.query(ctx, selectColumns+" ORDER BY name")
}

// ListByProgramID retrieves ClassTypes for a specific program.
// PRE: programID is non-empty
// POST: Returns class types for the given program
func (s *SQLiteStore) ListByProgramID(ctx context.Context, programID string) ([]domain.ClassType, error) {
	return s.query(ctx, selectColumns+" WHERE program_id = ? ORDER BY name", programID)
}

func (s *SQLiteStore) query(ctx context.Context, query string, args ...any) ([]domain.ClassType, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.ClassType
	for rows.Next() {
		entity, err := scanClassType(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}
