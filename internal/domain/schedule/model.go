package schedule

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gymboard/internal/domain/layout"
)

// Day of week constants
const (
	Monday    = "monday"
	Tuesday   = "tuesday"
	Wednesday = "wednesday"
	Thursday  = "thursday"
	Friday    = "friday"
	Saturday  = "saturday"
	Sunday    = "sunday"
)

// ValidDays contains all valid day values, Monday first.
var ValidDays = []string{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// Domain errors
var (
	ErrEmptyClassTypeID = errors.New("class type ID cannot be empty")
	ErrInvalidDay       = errors.New("day must be a valid day of the week")
	ErrEmptyStartTime   = errors.New("start time cannot be empty")
	ErrEmptyEndTime     = errors.New("end time cannot be empty")
	ErrEndBeforeStart   = errors.New("end time must be after start time")
)

// Schedule is one slot of the recurring weekly class structure.
// Dated instances are resolved from Schedule + Terms - Holidays, then
// adjusted by session overrides.
type Schedule struct {
	ID          string
	ClassTypeID string
	CoachID     string // optional
	Day         string // monday, tuesday, etc.
	StartTime   string // HH:MM format
	EndTime     string // HH:MM format
}

// Validate checks if the Schedule has valid data.
// PRE: Schedule struct is populated
// POST: Returns nil if valid, error otherwise
func (s *Schedule) Validate() error {
	if strings.TrimSpace(s.ClassTypeID) == "" {
		return ErrEmptyClassTypeID
	}
	if !IsValidDay(s.Day) {
		return ErrInvalidDay
	}
	if strings.TrimSpace(s.StartTime) == "" {
		return ErrEmptyStartTime
	}
	if strings.TrimSpace(s.EndTime) == "" {
		return ErrEmptyEndTime
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
	return nil
}

// StartMinute returns the start time as minutes since midnight.
func (s *Schedule) StartMinute() (int, error) {
	return layout.ParseClock(s.StartTime)
}

// EndMinute returns the end time as minutes since midnight.
func (s *Schedule) EndMinute() (int, error) {
	return layout.ParseClock(s.EndTime)
}

// DurationHours returns the session duration in hours.
// PRE: StartTime and EndTime are in HH:MM format
// POST: Returns duration as float64 hours, or error if times can't be parsed
func (s *Schedule) DurationHours() (float64, error) {
	start, err := s.StartMinute()
	if err != nil {
		return 0, fmt.Errorf("invalid start time %q: %w", s.StartTime, err)
	}
	end, err := s.EndMinute()
	if err != nil {
		return 0, fmt.Errorf("invalid end time %q: %w", s.EndTime, err)
	}
	return float64(end-start) / 60, nil
}

// Weekday returns the time.Weekday of the slot.
// PRE: Day is valid
func (s *Schedule) Weekday() time.Weekday {
	return WeekdayOf(s.Day)
}

// DayFromWeekday maps a time.Weekday to its day constant.
func DayFromWeekday(wd time.Weekday) string {
	return strings.ToLower(wd.String())
}

// WeekdayOf maps a day constant to its time.Weekday; unknown days map to Sunday.
func WeekdayOf(day string) time.Weekday {
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		if DayFromWeekday(wd) == day {
			return wd
		}
	}
	return time.Sunday
}

// OrderedDays returns the seven days starting from the given first day.
// Any value other than Sunday starts the week on Monday.
func OrderedDays(first string) []string {
	if first == Sunday {
		return append([]string{Sunday}, ValidDays[:6]...)
	}
	out := make([]string, len(ValidDays))
	copy(out, ValidDays)
	return out
}

// IsValidDay reports whether day is one of ValidDays.
func IsValidDay(day string) bool {
	for _, d := range ValidDays {
		if d == day {
			return true
		}
	}
	return false
}
