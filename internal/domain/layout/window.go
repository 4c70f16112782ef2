package layout

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MinutesPerDay is the length of a calendar day in minutes.
const MinutesPerDay = 24 * 60

// Domain errors
var (
	ErrInvalidClock  = errors.New("time must be in HH:MM format")
	ErrInvalidWindow = errors.New("window end must be after window start")
)

// Window is the visible time range of a board, in minutes since midnight.
type Window struct {
	StartMinute int
	EndMinute   int
}

// FullDay is the window covering the whole calendar day.
var FullDay = Window{StartMinute: 0, EndMinute: MinutesPerDay}

// NewWindow builds a window from two HH:MM clock values.
// PRE: start and end are HH:MM strings ("24:00" allowed for end)
// POST: Returns a window with StartMinute < EndMinute, or an error
func NewWindow(start, end string) (Window, error) {
	s, err := ParseClock(start)
	if err != nil {
		return Window{}, fmt.Errorf("window start: %w", err)
	}
	e, err := ParseClock(end)
	if err != nil {
		return Window{}, fmt.Errorf("window end: %w", err)
	}
	w := Window{StartMinute: s, EndMinute: e}
	if err := w.Validate(); err != nil {
		return Window{}, err
	}
	return w, nil
}

// Validate checks that the window has positive length.
func (w Window) Validate() error {
	if w.EndMinute <= w.StartMinute {
		return ErrInvalidWindow
	}
	return nil
}

// Length returns the window length in minutes.
func (w Window) Length() int {
	return w.EndMinute - w.StartMinute
}

// Clip intersects [start, end) with the window.
// The result is relative to midnight, not to the window start.
// PRE: none
// POST: ok is false when the intersection has zero or negative width
func (w Window) Clip(start, end int) (int, int, bool) {
	if start < w.StartMinute {
		start = w.StartMinute
	}
	if end > w.EndMinute {
		end = w.EndMinute
	}
	if end <= start {
		return 0, 0, false
	}
	return start, end, true
}

// ParseClock converts an "HH:MM" string to minutes since midnight.
// "24:00" is accepted so a class or window may end at midnight.
// PRE: none
// POST: Returns 0..1440 or ErrInvalidClock
func ParseClock(s string) (int, error) {
	s = strings.TrimSpace(s)
	hh, mm, ok := strings.Cut(s, ":")
	if !ok || len(hh) == 0 || len(hh) > 2 || len(mm) != 2 || !digits(hh) || !digits(mm) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	if m > 59 || h > 24 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	return h*60 + m, nil
}

// FormatClock renders minutes since midnight as "HH:MM".
func FormatClock(minute int) string {
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}

func digits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
