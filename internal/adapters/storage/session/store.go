package session

import (
	"context"
	"time"

	domain "gymboard/internal/domain/session"
)

// Store persists dated class Sessions.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Session, error)
	Save(ctx context.Context, value domain.Session) error
	Delete(ctx context.Context, id string) error
	ListBetween(ctx context.Context, from, to time.Time) ([]domain.Session, error)
	CountBetween(ctx context.Context, from, to time.Time) (int, error)
	ListPage(ctx context.Context, from, to time.Time, limit, offset int) ([]domain.Session, error)
	GetOverride(ctx context.Context, scheduleID string, date time.Time) (domain.Session, error)
	CountByCoachID(ctx context.Context, coachID string) (int, error)
	CountByClassTypeID(ctx context.Context, classTypeID string) (int, error)
}
