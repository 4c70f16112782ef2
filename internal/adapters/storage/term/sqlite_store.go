package term

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gymboard/internal/adapters/storage"
	domain "gymboard/internal/domain/term"
)

const dateFormat = "2006-01-02"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new TermStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func scanTerm(scan func(dest ...any) error) (domain.Term, error) {
	var entity domain.Term
	var startStr, endStr string
	if err := scan(&entity.ID, &entity.Name, &startStr, &endStr); err != nil {
		return domain.Term{}, err
	}
	var err error
	if entity.StartDate, err = time.Parse(dateFormat, startStr); err != nil {
		return domain.Term{}, fmt.Errorf("term %s start date: %w", entity.ID, err)
	}
	if entity.EndDate, err = time.Parse(dateFormat, endStr); err != nil {
		return domain.Term{}, fmt.Errorf("term %s end date: %w", entity.ID, err)
	}
	return entity, nil
}

// GetByID retrieves a Term by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error wrapping storage.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Term, error) {
	row := s.db.QueryRowContext(ctx, "SELECT id, name, start_date, end_date FROM term WHERE id = ?", id)
	entity, err := scanTerm(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Term{}, fmt.Errorf("term %s: %w", id, storage.ErrNotFound)
	}
	return entity, err
}

// Save persists a Term to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Term) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO term (id, name, start_date, end_date) VALUES (?, ?, ?, ?) ON CONFLICT(id) DO UPDATE SET name=excluded.name, start_date=excluded.start_date, end_date=excluded.end_date",
		entity.ID, entity.Name, entity.StartDate.Format(dateFormat), entity.EndDate.Format(dateFormat),
	)
	return err
}

// Delete removes a Term from the database.
// PRE: id is non-empty
// POST: Row removed, or an error wrapping storage.ErrNotFound
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	return storage.DeleteByID(ctx, s.db, "term", id)
}

// List retrieves all Terms ordered by start date.
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Term, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, start_date, end_date FROM term ORDER BY start_date")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Term
	for rows.Next() {
		entity, err := scanTerm(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}
