package coach

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gymboard/internal/adapters/storage"
	domain "gymboard/internal/domain/coach"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new CoachStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Coach by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error wrapping storage.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Coach, error) {
	row := s.db.QueryRowContext(ctx, "SELECT id, name, email, active FROM coach WHERE id = ?", id)
	var entity domain.Coach
	err := row.Scan(&entity.ID, &entity.Name, &entity.Email, &entity.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Coach{}, fmt.Errorf("coach %s: %w", id, storage.ErrNotFound)
	}
	return entity, err
}

// Save persists a Coach to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Coach) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO coach (id, name, email, active) VALUES (?, ?, ?, ?) ON CONFLICT(id) DO UPDATE SET name=excluded.name, email=excluded.email, active=excluded.active",
		entity.ID, entity.Name, entity.Email, entity.Active,
	)
	return err
}

// Delete removes a Coach from the database.
// PRE: id is non-empty
// POST: Row removed, or an error wrapping storage.ErrNotFound
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	return storage.DeleteByID(ctx, s.db, "coach", id)
}

// List retrieves all Coaches, active first, then by name.
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Coach, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, email, active FROM coach ORDER BY active DESC, name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Coach
	for rows.Next() {
		var entity domain.Coach
		if err := rows.Scan(&entity.ID, &entity.Name, &entity.Email, &entity.Active); err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}
