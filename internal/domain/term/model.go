package term

import (
	"errors"
	"strings"
	"time"
)

// Domain errors
var (
	ErrEmptyName      = errors.New("term name cannot be empty")
	ErrInvalidDates   = errors.New("start date must be before end date")
	ErrEmptyStartDate = errors.New("start date cannot be zero")
	ErrEmptyEndDate   = errors.New("end date cannot be zero")
)

// Term is a teaching period; weekly classes only run on days inside a term.
type Term struct {
	ID        string
	Name      string
	StartDate time.Time
	EndDate   time.Time // inclusive
}

// Validate checks if the Term has valid data.
// PRE: Term struct is populated
// POST: Returns nil if valid, error otherwise
func (t *Term) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return ErrEmptyName
	}
	if t.StartDate.IsZero() {
		return ErrEmptyStartDate
	}
	if t.EndDate.IsZero() {
		return ErrEmptyEndDate
	}
	if !civilDay(t.StartDate).Before(civilDay(t.EndDate)) {
		return ErrInvalidDates
	}
	return nil
}

// Contains returns true if the calendar day of date falls within this term.
// The day is read in date's own location, so a late-evening class in a
// positive-offset zone is not pushed onto the previous day.
// PRE: date is a valid time
// INVARIANT: Term fields are not mutated
func (t *Term) Contains(date time.Time) bool {
	d := civilDay(date)
	return !d.Before(civilDay(t.StartDate)) && !d.After(civilDay(t.EndDate))
}

// AnyContains reports whether date is inside any of terms.
// An empty list means the gym does not use terms and every day is in term.
func AnyContains(terms []Term, date time.Time) bool {
	if len(terms) == 0 {
		return true
	}
	for i := range terms {
		if terms[i].Contains(date) {
			return true
		}
	}
	return false
}

// civilDay maps t to midnight UTC of its calendar day in t's location.
func civilDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
