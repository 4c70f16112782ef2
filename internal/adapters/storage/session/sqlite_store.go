package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"gymboard/internal/adapters/storage"
	domain "gymboard/internal/domain/session"
)

const selectColumns = `SELECT id, schedule_id, class_type_id, coach_id, date, start_time, end_time, status, note FROM class_session`

// SQLiteStore implements Store using SQLite.
// Dates are stored as YYYY-MM-DD strings so range filters compare lexically.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new SessionStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

type scanner func(dest ...any) error

func scanSession(scan scanner) (domain.Session, error) {
	var entity domain.Session
	var date string
	if err := scan(&entity.ID, &entity.ScheduleID, &entity.ClassTypeID, &entity.CoachID, &date,
		&entity.StartTime, &entity.EndTime, &entity.Status, &entity.Note); err != nil {
		return domain.Session{}, err
	}
	parsed, err := time.Parse(domain.DateFormat, date)
	if err != nil {
		return domain.Session{}, fmt.Errorf("session %s has malformed date %q: %w", entity.ID, date, err)
	}
	entity.Date = parsed
	return entity, nil
}

// GetByID retrieves a Session by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error wrapping storage.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Session, error) {
	entity, err := scanSession(s.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Session{}, fmt.Errorf("session %s: %w", id, storage.ErrNotFound)
	}
	return entity, err
}

// Save persists a Session to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update); a second override of the same
// schedule and date yields an error wrapping storage.ErrConflict
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Session) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO class_session (id, schedule_id, class_type_id, coach_id, date, start_time, end_time, status, note)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			schedule_id=excluded.schedule_id, class_type_id=excluded.class_type_id, coach_id=excluded.coach_id,
			date=excluded.date, start_time=excluded.start_time, end_time=excluded.end_time,
			status=excluded.status, note=excluded.note`,
		entity.ID, entity.ScheduleID, entity.ClassTypeID, entity.CoachID, entity.DateKey(),
		entity.StartTime, entity.EndTime, entity.Status, entity.Note,
	)
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint") {
		return fmt.Errorf("schedule %s already has an override on %s: %w", entity.ScheduleID, entity.DateKey(), storage.ErrConflict)
	}
	return err
}

// GetOverride retrieves the Session overriding scheduleID on date.
// PRE: scheduleID is non-empty
// POST: Returns the override or an error wrapping storage.ErrNotFound
func (s *SQLiteStore) GetOverride(ctx context.Context, scheduleID string, date time.Time) (domain.Session, error) {
	entity, err := scanSession(s.db.QueryRowContext(ctx, selectColumns+" WHERE schedule_id = ? AND date = ?",
		scheduleID, date.Format(domain.DateFormat)).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Session{}, fmt.Errorf("override of %s on %s: %w", scheduleID, date.Format(domain.DateFormat), storage.ErrNotFound)
	}
	return entity, err
}

// CountByCoachID counts Sessions of any date assigned to coachID.
func (s *SQLiteStore) CountByCoachID(ctx context.Context, coachID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM class_session WHERE coach_id = ?", coachID).Scan(&n)
	return n, err
}

// CountByClassTypeID counts Sessions of any date of classTypeID.
func (s *SQLiteStore) CountByClassTypeID(ctx context.Context, classTypeID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM class_session WHERE class_type_id = ?", classTypeID).Scan(&n)
	return n, err
}

// Delete removes a Session from the database.
// PRE: id is non-empty
// POST: Row removed, or an error wrapping storage.ErrNotFound
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	return storage.DeleteByID(ctx, s.db, "class_session", id)
}

// ListBetween retrieves Sessions dated in [from, to), ordered by date and start time.
// PRE: from is before to
// POST: Returns matching sessions
func (s *SQLiteStore) ListBetween(ctx context.Context, from, to time.Time) ([]domain.Session, error) {
	return s.query(ctx, selectColumns+" WHERE date >= ? AND date < ? ORDER BY date, start_time, rowid",
		from.Format(domain.DateFormat), to.Format(domain.DateFormat))
}

// CountBetween counts Sessions dated in [from, to).
func (s *SQLiteStore) CountBetween(ctx context.Context, from, to time.Time) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM class_session WHERE date >= ? AND date < ?",
		from.Format(domain.DateFormat), to.Format(domain.DateFormat)).Scan(&n)
	return n, err
}

// ListPage retrieves one page of Sessions dated in [from, to).
// PRE: limit > 0, offset >= 0
// POST: Returns at most limit sessions in ListBetween order
func (s *SQLiteStore) ListPage(ctx context.Context, from, to time.Time, limit, offset int) ([]domain.Session, error) {
	return s.query(ctx, selectColumns+" WHERE date >= ? AND date < ? ORDER BY date, start_time, rowid LIMIT ? OFFSET ?",
		from.Format(domain.DateFormat), to.Format(domain.DateFormat), limit, offset)
}

func (s *SQLiteStore) query(ctx context.Context, query string, args ...any) ([]domain.Session, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Session
	for rows.Next() {
		entity, err := scanSession(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}
