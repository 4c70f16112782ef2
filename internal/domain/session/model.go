package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gymboard/internal/domain/layout"
)

// Status constants
const (
	StatusScheduled = "scheduled"
	StatusCancelled = "cancelled"
)

// DateFormat is the wire and storage format of Session.Date.
const DateFormat = "2006-01-02"

// MaxNoteLength bounds the free-form note.
const MaxNoteLength = 500

// Domain errors
var (
	ErrEmptyClassTypeID = errors.New("class type ID cannot be empty")
	ErrEmptyDate        = errors.New("session date cannot be zero")
	ErrInvalidStatus    = errors.New("status must be 'scheduled' or 'cancelled'")
	ErrEndBeforeStart   = errors.New("end time must be after start time")
)

// Session is a dated class instance.
// With a ScheduleID it overrides that schedule's generated instance on Date
// (coach swap, time change or cancellation). Without one it is a one-off class.
type Session struct {
	ID          string
	ScheduleID  string // optional
	ClassTypeID string
	CoachID     string // optional
	Date        time.Time
	StartTime   string // HH:MM
	EndTime     string // HH:MM
	Status      string
	Note        string
}

// Validate checks if the Session has valid data.
// PRE: Session struct is populated
// POST: Returns nil if valid, error otherwise
func (s *Session) Validate() error {
	if strings.TrimSpace(s.ClassTypeID) == "" {
		return ErrEmptyClassTypeID
	}
	if s.Date.IsZero() {
		return ErrEmptyDate
	}
	if s.Status != StatusScheduled && s.Status != StatusCancelled {
		return ErrInvalidStatus
	}
	start, err := layout.ParseClock(s.StartTime)
	if err != nil {
		return fmt.Errorf("start time: %w", err)
	}
	end, err := layout.ParseClock(s.EndTime)
	if err != nil {
		return fmt.Errorf("end time: %w", err)
	}
	if end <= start {
		return ErrEndBeforeStart
	}
	if len(s.Note) > MaxNoteLength {
		return fmt.Errorf("session note cannot exceed %d characters", MaxNoteLength)
	}
	return nil
}

// Cancelled reports whether the session is cancelled.
func (s *Session) Cancelled() bool {
	return s.Status == StatusCancelled
}

// IsOverride reports whether the session replaces a generated schedule instance.
func (s *Session) IsOverride() bool {
	return s.ScheduleID != ""
}

// DateKey returns the session date as YYYY-MM-DD.
func (s *Session) DateKey() string {
	return s.Date.Format(DateFormat)
}

// OverrideKey identifies the generated instance a session replaces.
func OverrideKey(scheduleID string, date time.Time) string {
	return scheduleID + "@" + date.Format(DateFormat)
}
