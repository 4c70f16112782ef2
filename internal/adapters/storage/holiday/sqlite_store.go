package holiday

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gymboard/internal/adapters/storage"
	domain "gymboard/internal/domain/holiday"
)

const (
	dateFormat    = "2006-01-02"
	selectColumns = "SELECT id, name, start_date, end_date, source FROM holiday"
	upsertHoliday = `INSERT INTO holiday (id, name, start_date, end_date, source) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name=excluded.name, start_date=excluded.start_date, end_date=excluded.end_date, source=excluded.source`
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new HolidayStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func scanHoliday(scan func(dest ...any) error) (domain.Holiday, error) {
	var entity domain.Holiday
	var startStr, endStr string
	if err := scan(&entity.ID, &entity.Name, &startStr, &endStr, &entity.Source); err != nil {
		return domain.Holiday{}, err
	}
	var err error
	if entity.StartDate, err = time.Parse(dateFormat, startStr); err != nil {
		return domain.Holiday{}, fmt.Errorf("holiday %s start date: %w", entity.ID, err)
	}
	if entity.EndDate, err = time.Parse(dateFormat, endStr); err != nil {
		return domain.Holiday{}, fmt.Errorf("holiday %s end date: %w", entity.ID, err)
	}
	return entity, nil
}

func sourceOf(h domain.Holiday) string {
	if h.Source == "" {
		return domain.SourceManual
	}
	return h.Source
}

// GetByID retrieves a Holiday by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error wrapping storage.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Holiday, error) {
	entity, err := scanHoliday(s.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Holiday{}, fmt.Errorf("holiday %s: %w", id, storage.ErrNotFound)
	}
	return entity, err
}

// Save persists a Holiday to the database. An empty Source is stored as manual.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Holiday) error {
	_, err := s.db.ExecContext(ctx, upsertHoliday,
		entity.ID, entity.Name, entity.StartDate.Format(dateFormat), entity.EndDate.Format(dateFormat), sourceOf(entity),
	)
	return err
}

// Delete removes a Holiday from the database.
// PRE: id is non-empty
// POST: Row removed, or an error wrapping storage.ErrNotFound
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	return storage.DeleteByID(ctx, s.db, "holiday", id)
}

// List retrieves all Holidays ordered by start date.
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Holiday, error) {
	return s.query(ctx, selectColumns+" ORDER BY start_date, id")
}

// ListBySource retrieves the Holidays that came from one source.
// PRE: source is "manual" or a feed id
// POST: Returns matching holidays ordered by start date
func (s *SQLiteStore) ListBySource(ctx context.Context, source string) ([]domain.Holiday, error) {
	return s.query(ctx, selectColumns+" WHERE source = ? ORDER BY start_date, id", source)
}

// ReplaceSource atomically swaps every holiday of source for values.
// PRE: every value has Source == source and has been validated
// POST: holidays of other sources are untouched; on error nothing changes
func (s *SQLiteStore) ReplaceSource(ctx context.Context, source string, values []domain.Holiday) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace %s: %w", source, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM holiday WHERE source = ?", source); err != nil {
		return fmt.Errorf("clear source %s: %w", source, err)
	}
	for _, h := range values {
		if _, err := tx.ExecContext(ctx, upsertHoliday,
			h.ID, h.Name, h.StartDate.Format(dateFormat), h.EndDate.Format(dateFormat), source,
		); err != nil {
			return fmt.Errorf("insert holiday %s: %w", h.ID, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) query(ctx context.Context, query string, args ...any) ([]domain.Holiday, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Holiday
	for rows.Next() {
		entity, err := scanHoliday(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}
