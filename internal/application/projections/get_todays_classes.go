package projections

import (
	"context"
	"time"

	"gymboard/internal/domain/schedule"
	"gymboard/internal/domain/session"
)

// TodaysClassesQuery selects the day and display settings.
type TodaysClassesQuery struct {
	BoardOptions
	Now      time.Time
	Location *time.Location // nil means Now's location
}

// QueryGetTodaysClasses resolves today's classes on-the-fly from Schedule + Terms - Holidays,
// applying session overrides, and lays them out as a single board column.
// PRE: deps stores are non-nil
// POST: Returns today's column; empty Chips outside term time or on a holiday
func QueryGetTodaysClasses(ctx context.Context, query TodaysClassesQuery, deps GetWeekBoardDeps) (BoardDay, error) {
	loc := query.Location
	if loc == nil {
		loc = query.Now.Location()
	}
	now := query.Now.In(loc)
	y, m, d := now.Date()
	from := time.Date(y, m, d, 0, 0, 0, 0, loc)
	to := from.AddDate(0, 0, 1)

	days, err := resolveDays(ctx, from, to, loc, "", deps)
	if err != nil {
		return BoardDay{}, err
	}

	key := from.Format(session.DateFormat)
	day := BoardDay{Day: schedule.DayFromWeekday(from.Weekday()), Date: key, Cancelled: []Chip{}}
	var chips []Chip
	if rd, ok := days[key]; ok {
		chips = rd.chips
		if rd.cancelled != nil {
			day.Cancelled = rd.cancelled
		}
	}

	start := time.Now()
	day = layoutDay(day, chips, query.BoardOptions)
	recordLayout(deps.Recorder, "today", []BoardDay{day}, start)
	return day, nil
}
