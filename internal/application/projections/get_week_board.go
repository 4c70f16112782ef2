package projections

import (
	"context"
	"sort"
	"time"

	"gymboard/internal/application/recurrence"
	"gymboard/internal/domain/schedule"
	"gymboard/internal/domain/session"
)

// GetWeekBoardDeps holds dependencies for the projection.
type GetWeekBoardDeps struct {
	ScheduleStore  ScheduleLister
	SessionStore   SessionLister
	TermStore      TermLister
	HolidayStore   HolidayLister
	ClassTypeStore ClassTypeLister
	ProgramStore   ProgramLister
	CoachStore     CoachLister
	Recorder       LayoutRecorder
}

// WeekBoardQuery selects the week and optional coach.
type WeekBoardQuery struct {
	BoardOptions
	WeekOf   time.Time      // any instant inside the week
	Location *time.Location // gym timezone; nil means WeekOf's location
	CoachID  string         // non-empty gives the coach week view
}

// WeekBoard is the dated class instances of one calendar week.
type WeekBoard struct {
	WeekStart time.Time
	CoachID   string
	Days      []BoardDay
}

// WeekStartOf returns midnight of the first day of the week containing t.
func WeekStartOf(t time.Time, weekStart string, loc *time.Location) time.Time {
	t = t.In(loc)
	first := time.Monday
	if weekStart == schedule.Sunday {
		first = time.Sunday
	}
	back := (int(t.Weekday()) - int(first) + 7) % 7
	y, m, d := t.Date()
	return time.Date(y, m, d-back, 0, 0, 0, 0, loc)
}

// QueryGetWeekBoard resolves one week from the weekly structure, terms, holidays and
// dated sessions, then lays out each date.
// Algorithm: 1) expand schedules over the week, 2) replace generated instances that
// have an override session, 3) add one-off sessions, 4) filter by coach, 5) lay out.
// PRE: deps stores are non-nil
// POST: Returns seven dated days in week order
func QueryGetWeekBoard(ctx context.Context, query WeekBoardQuery, deps GetWeekBoardDeps) (WeekBoard, error) {
	loc := query.Location
	if loc == nil {
		loc = query.WeekOf.Location()
	}
	from := WeekStartOf(query.WeekOf, query.WeekStart, loc)
	to := from.AddDate(0, 0, 7)

	days, err := resolveDays(ctx, from, to, loc, query.CoachID, deps)
	if err != nil {
		return WeekBoard{}, err
	}

	start := time.Now()
	board := WeekBoard{WeekStart: from, CoachID: query.CoachID}
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		key := d.Format(session.DateFormat)
		day := BoardDay{Day: schedule.DayFromWeekday(d.Weekday()), Date: key, Cancelled: []Chip{}}
		var chips []Chip
		if rd, ok := days[key]; ok {
			chips = rd.chips
			if rd.cancelled != nil {
				day.Cancelled = rd.cancelled
			}
		}
		board.Days = append(board.Days, layoutDay(day, chips, query.BoardOptions))
	}
	recordLayout(deps.Recorder, "week", board.Days, start)
	return board, nil
}

type resolvedDay struct {
	chips     []Chip
	cancelled []Chip
}

// resolveDays returns the unpositioned chips of each date in [from, to), keyed by YYYY-MM-DD.
func resolveDays(ctx context.Context, from, to time.Time, loc *time.Location, coachID string, deps GetWeekBoardDeps) (map[string]*resolvedDay, error) {
	schedules, err := deps.ScheduleStore.List(ctx)
	if err != nil {
		return nil, err
	}
	terms, err := deps.TermStore.List(ctx)
	if err != nil {
		return nil, err
	}
	holidays, err := deps.HolidayStore.List(ctx)
	if err != nil {
		return nil, err
	}
	sessions, err := deps.SessionStore.ListBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	cat, err := loadCatalog(ctx, deps.ClassTypeStore, deps.ProgramStore, deps.CoachStore)
	if err != nil {
		return nil, err
	}
	occurrences, err := recurrence.Expand(schedules, terms, holidays, from, to, loc)
	if err != nil {
		return nil, err
	}

	scheduleByID := make(map[string]schedule.Schedule, len(schedules))
	for _, s := range schedules {
		scheduleByID[s.ID] = s
	}
	// The first override of a schedule and date replaces the generated instance.
	// Any later one (only possible in data written before the unique index) is
	// kept as an extra so no stored session vanishes from the board.
	sortSessions(sessions)
	overrides := make(map[string]session.Session)
	var extras []session.Session
	for _, s := range sessions {
		if s.IsOverride() {
			key := session.OverrideKey(s.ScheduleID, s.Date)
			if _, dup := overrides[key]; !dup {
				overrides[key] = s
				continue
			}
		}
		extras = append(extras, s)
	}

	out := make(map[string]*resolvedDay)
	dayOf := func(key string) *resolvedDay {
		rd, ok := out[key]
		if !ok {
			rd = &resolvedDay{}
			out[key] = rd
		}
		return rd
	}
	place := func(key string, ch Chip, cancelled bool) {
		if coachID != "" && ch.CoachID != coachID {
			return
		}
		rd := dayOf(key)
		if cancelled {
			rd.cancelled = append(rd.cancelled, ch)
			return
		}
		rd.chips = append(rd.chips, ch)
	}

	used := make(map[string]bool)
	for _, occ := range occurrences {
		s := scheduleByID[occ.ScheduleID]
		dateKey := occ.Date.Format(session.DateFormat)
		okey := session.OverrideKey(s.ID, occ.Date)
		if ov, ok := overrides[okey]; ok {
			used[okey] = true
			ch, found := overrideChip(cat, s, ov)
			if found {
				place(dateKey, ch, ov.Cancelled())
			}
			continue
		}
		ch, ok := cat.chip(s.ClassTypeID, s.CoachID, s.StartTime, s.EndTime)
		if !ok {
			continue
		}
		ch.Key = s.ID + "@" + dateKey
		ch.ScheduleID = s.ID
		ch.Date = dateKey
		place(dateKey, ch, false)
	}

	// An override whose generated instance does not exist (holiday, out of term)
	// still runs as a make-up class unless it is itself cancelled.
	for key, ov := range overrides {
		if used[key] || ov.Cancelled() {
			continue
		}
		extras = append(extras, ov)
	}
	sortSessions(extras)

	for _, ex := range extras {
		s := scheduleByID[ex.ScheduleID]
		ch, ok := overrideChip(cat, s, ex)
		if !ok {
			continue
		}
		ch.OneOff = !ex.IsOverride()
		place(ex.DateKey(), ch, ex.Cancelled())
	}
	return out, nil
}

// overrideChip builds the chip of a dated session, inheriting unset fields from its schedule.
func overrideChip(cat catalog, s schedule.Schedule, ov session.Session) (Chip, bool) {
	classTypeID := ov.ClassTypeID
	if classTypeID == "" {
		classTypeID = s.ClassTypeID
	}
	coachID := ov.CoachID
	if coachID == "" {
		coachID = s.CoachID
	}
	ch, ok := cat.chip(classTypeID, coachID, ov.StartTime, ov.EndTime)
	if !ok {
		return Chip{}, false
	}
	ch.Key = ov.ID
	ch.SessionID = ov.ID
	ch.ScheduleID = ov.ScheduleID
	ch.Date = ov.DateKey()
	ch.Note = ov.Note
	ch.Override = ov.IsOverride()
	return ch, true
}

// sortSessions orders sessions by date, start time and id so map iteration does not leak.
func sortSessions(list []session.Session) {
	sort.SliceStable(list, func(i, j int) bool { return sessionLess(list[i], list[j]) })
}

func sessionLess(a, b session.Session) bool {
	if a.DateKey() != b.DateKey() {
		return a.DateKey() < b.DateKey()
	}
	if a.StartTime != b.StartTime {
		return a.StartTime < b.StartTime
	}
	return a.ID < b.ID
}
