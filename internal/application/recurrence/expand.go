// Package recurrence resolves the weekly class structure into dated instances.
package recurrence

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/teambition/rrule-go"

	"gymboard/internal/domain/holiday"
	"gymboard/internal/domain/schedule"
	"gymboard/internal/domain/term"
)

// ErrInvalidRange is returned when to is not after from.
var ErrInvalidRange = errors.New("expansion range end must be after start")

// Occurrence is one dated instance of a weekly schedule slot.
type Occurrence struct {
	ScheduleID  string
	Date        time.Time // midnight in the expansion location
	Start       time.Time
	End         time.Time
	StartMinute int
	EndMinute   int
}

var weekdays = map[time.Weekday]rrule.Weekday{
	time.Monday:    rrule.MO,
	time.Tuesday:   rrule.TU,
	time.Wednesday: rrule.WE,
	time.Thursday:  rrule.TH,
	time.Friday:    rrule.FR,
	time.Saturday:  rrule.SA,
	time.Sunday:    rrule.SU,
}

// Expand produces every occurrence of schedules whose start falls in [from, to).
// Days outside all terms are skipped (no terms means always in term) and holiday
// days are excluded. Output is ordered by start, then by schedule input order.
// PRE: schedules have been validated; loc is non-nil
// POST: Returns occurrences in loc, or an error if a rule cannot be built
func Expand(schedules []schedule.Schedule, terms []term.Term, holidays []holiday.Holiday, from, to time.Time, loc *time.Location) ([]Occurrence, error) {
	if !to.After(from) {
		return nil, ErrInvalidRange
	}
	from, to = from.In(loc), to.In(loc)
	fromDay := midnight(from, loc)

	var holidayDays []time.Time
	for i := range holidays {
		holidayDays = append(holidayDays, holidays[i].Days(loc)...)
	}

	var out []Occurrence
	for _, s := range schedules {
		startMin, err := s.StartMinute()
		if err != nil {
			return nil, fmt.Errorf("schedule %s: %w", s.ID, err)
		}
		endMin, err := s.EndMinute()
		if err != nil {
			return nil, fmt.Errorf("schedule %s: %w", s.ID, err)
		}

		dtstart := atMinute(fromDay, startMin, loc)
		r, err := rrule.NewRRule(rrule.ROption{
			Freq:      rrule.WEEKLY,
			Byweekday: []rrule.Weekday{weekdays[s.Weekday()]},
			Dtstart:   dtstart,
		})
		if err != nil {
			return nil, fmt.Errorf("schedule %s rule: %w", s.ID, err)
		}

		var set rrule.Set
		set.RRule(r)
		for _, d := range holidayDays {
			set.ExDate(atMinute(d, startMin, loc))
		}

		for _, start := range set.Between(from, to, true) {
			start = start.In(loc)
			if !start.Before(to) {
				continue
			}
			day := midnight(start, loc)
			if !term.AnyContains(terms, day) {
				continue
			}
			out = append(out, Occurrence{
				ScheduleID:  s.ID,
				Date:        day,
				Start:       start,
				End:         atMinute(day, endMin, loc),
				StartMinute: startMin,
				EndMinute:   endMin,
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start.Before(out[j].Start)
	})
	return out, nil
}

func midnight(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// atMinute returns the wall-clock time minute minutes after midnight of day.
func atMinute(day time.Time, minute int, loc *time.Location) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), minute/60, minute%60, 0, 0, loc)
}
