package projections

import (
	"context"
	"time"

	"gymboard/internal/domain/classtype"
	"gymboard/internal/domain/coach"
	"gymboard/internal/domain/holiday"
	"gymboard/internal/domain/program"
	"gymboard/internal/domain/schedule"
	"gymboard/internal/domain/session"
	"gymboard/internal/domain/term"
)

// ScheduleLister lists the weekly class structure.
type ScheduleLister interface {
	List(ctx context.Context) ([]schedule.Schedule, error)
}

// SessionLister lists dated sessions in [from, to).
type SessionLister interface {
	ListBetween(ctx context.Context, from, to time.Time) ([]session.Session, error)
}

// TermLister lists terms.
type TermLister interface {
	List(ctx context.Context) ([]term.Term, error)
}

// HolidayLister lists holidays.
type HolidayLister interface {
	List(ctx context.Context) ([]holiday.Holiday, error)
}

// ClassTypeLister lists class types.
type ClassTypeLister interface {
	List(ctx context.Context) ([]classtype.ClassType, error)
}

// ProgramLister lists programs.
type ProgramLister interface {
	List(ctx context.Context) ([]program.Program, error)
}

// CoachLister lists coaches.
type CoachLister interface {
	List(ctx context.Context) ([]coach.Coach, error)
}

// LayoutRecorder receives the duration of each board layout pass.
type LayoutRecorder interface {
	RecordLayout(board string, items int, start time.Time)
}
