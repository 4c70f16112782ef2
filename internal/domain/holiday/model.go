package holiday

import (
	"errors"
	"strings"
	"time"
)

// SourceManual marks holidays entered by an admin; imported holidays carry their feed ID.
const SourceManual = "manual"

// Domain errors
var (
	ErrEmptyName      = errors.New("holiday name cannot be empty")
	ErrInvalidDates   = errors.New("start date must be before or equal to end date")
	ErrEmptyStartDate = errors.New("start date cannot be zero")
	ErrEmptyEndDate   = errors.New("end date cannot be zero")
)

// Holiday is a day (or range) when weekly classes are not held.
type Holiday struct {
	ID        string
	Name      string
	StartDate time.Time
	EndDate   time.Time // inclusive
	Source    string
}

// Validate checks if the Holiday has valid data.
// PRE: Holiday struct is populated
// POST: Returns nil if valid, error otherwise
func (h *Holiday) Validate() error {
	if strings.TrimSpace(h.Name) == "" {
		return ErrEmptyName
	}
	if h.StartDate.IsZero() {
		return ErrEmptyStartDate
	}
	if h.EndDate.IsZero() {
		return ErrEmptyEndDate
	}
	if civilDay(h.StartDate).After(civilDay(h.EndDate)) {
		return ErrInvalidDates
	}
	return nil
}

// Contains returns true if the calendar day of date falls within this holiday.
// PRE: date is a valid time
// INVARIANT: Holiday fields are not mutated
func (h *Holiday) Contains(date time.Time) bool {
	d := civilDay(date)
	return !d.Before(civilDay(h.StartDate)) && !d.After(civilDay(h.EndDate))
}

// IsImported reports whether the holiday came from a calendar feed.
func (h *Holiday) IsImported() bool {
	return h.Source != "" && h.Source != SourceManual
}

// Days returns every calendar day covered by the holiday, at midnight in loc.
// PRE: Validate() returned nil
func (h *Holiday) Days(loc *time.Location) []time.Time {
	start := civilDay(h.StartDate)
	end := civilDay(h.EndDate)
	var out []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		out = append(out, time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc))
	}
	return out
}

// civilDay maps t to midnight UTC of its calendar day in t's location.
func civilDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
