package web

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"gymboard/internal/adapters/ics"
	"gymboard/internal/application/projections"
	"gymboard/internal/domain/layout"
)

// chipView adds rendered description HTML to a board chip.
type chipView struct {
	projections.Chip
	DescriptionHTML string
}

// dayView is a board column with rendered chips.
type dayView struct {
	projections.BoardDay
	Chips     []chipView
	Cancelled []chipView
}

type structureView struct {
	Days []dayView
}

type weekView struct {
	WeekStart string
	CoachID   string `json:",omitempty"`
	Days      []dayView
}

func viewChips(chips []projections.Chip) []chipView {
	out := make([]chipView, 0, len(chips))
	for _, c := range chips {
		out = append(out, chipView{Chip: c, DescriptionHTML: renderMarkdown(c.Description)})
	}
	return out
}

func viewDay(d projections.BoardDay) dayView {
	return dayView{BoardDay: d, Chips: viewChips(d.Chips), Cancelled: viewChips(d.Cancelled)}
}

func viewDays(days []projections.BoardDay) []dayView {
	out := make([]dayView, 0, len(days))
	for _, d := range days {
		out = append(out, viewDay(d))
	}
	return out
}

func weekDeps() projections.GetWeekBoardDeps {
	return projections.GetWeekBoardDeps{
		ScheduleStore:  stores.ScheduleStore,
		SessionStore:   stores.SessionStore,
		TermStore:      stores.TermStore,
		HolidayStore:   stores.HolidayStore,
		ClassTypeStore: stores.ClassTypeStore,
		ProgramStore:   stores.ProgramStore,
		CoachStore:     stores.CoachStore,
		Recorder:       perfCollector,
	}
}

// boardOptions applies optional window overrides (?start=HH:MM&end=HH:MM) to the configured board settings.
func boardOptions(r *http.Request) (projections.BoardOptions, error) {
	opts := settings.Board
	q := r.URL.Query()
	if q.Get("start") == "" && q.Get("end") == "" {
		return opts, nil
	}
	start, end := q.Get("start"), q.Get("end")
	if start == "" {
		start = layout.FormatClock(opts.Window.StartMinute)
	}
	if end == "" {
		end = layout.FormatClock(opts.Window.EndMinute)
	}
	w, err := layout.NewWindow(start, end)
	if err != nil {
		return opts, err
	}
	opts.Window = w
	return opts, nil
}

// handleStructureBoard handles GET /api/boards/structure[?coach_id=]
func handleStructureBoard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	opts, err := boardOptions(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	deps := projections.GetStructureBoardDeps{
		ScheduleStore:  stores.ScheduleStore,
		ClassTypeStore: stores.ClassTypeStore,
		ProgramStore:   stores.ProgramStore,
		CoachStore:     stores.CoachStore,
		Recorder:       perfCollector,
	}
	board, err := projections.QueryGetStructureBoard(r.Context(), projections.StructureBoardQuery{
		BoardOptions: opts,
		CoachID:      r.URL.Query().Get("coach_id"),
	}, deps)
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, structureView{Days: viewDays(board.Days)})
}

// loadWeek runs the week board for the request's date and coach.
func loadWeek(ctx context.Context, r *http.Request, coachID string, opts projections.BoardOptions) (projections.WeekBoard, error) {
	date, err := queryDate(r, "date")
	if err != nil {
		return projections.WeekBoard{}, err
	}
	return projections.QueryGetWeekBoard(ctx, projections.WeekBoardQuery{
		BoardOptions: opts,
		WeekOf:       date,
		Location:     settings.Location,
		CoachID:      coachID,
	}, weekDeps())
}

// handleWeekBoard handles GET /api/boards/week?date=YYYY-MM-DD
func handleWeekBoard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	if _, err := queryDate(r, "date"); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	opts, err := boardOptions(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	board, err := loadWeek(r.Context(), r, "", opts)
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, weekView{WeekStart: board.WeekStart.Format(dateLayout), Days: viewDays(board.Days)})
}

// coachWeek validates the coach and date parameters and loads the coach's week with opts.
func coachWeek(w http.ResponseWriter, r *http.Request, opts projections.BoardOptions) (projections.WeekBoard, string, bool) {
	coachID := r.URL.Query().Get("coach_id")
	if coachID == "" {
		http.Error(w, "coach_id is required", http.StatusBadRequest)
		return projections.WeekBoard{}, "", false
	}
	if _, err := queryDate(r, "date"); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return projections.WeekBoard{}, "", false
	}
	c, err := stores.CoachStore.GetByID(r.Context(), coachID)
	if err != nil {
		storeError(w, err)
		return projections.WeekBoard{}, "", false
	}
	board, err := loadWeek(r.Context(), r, coachID, opts)
	if err != nil {
		internalError(w, err)
		return projections.WeekBoard{}, "", false
	}
	return board, c.Name, true
}

// handleCoachWeekBoard handles GET /api/boards/coach-week?coach_id=&date=
func handleCoachWeekBoard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	opts, err := boardOptions(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	board, _, ok := coachWeek(w, r, opts)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, weekView{WeekStart: board.WeekStart.Format(dateLayout), CoachID: board.CoachID, Days: viewDays(board.Days)})
}

// handleCoachWeekICS handles GET /api/boards/coach-week.ics?coach_id=&date=
// Every scheduled class of the week is exported, including ones outside the
// display window or hidden behind "+N more". ?start and ?end do not apply.
func handleCoachWeekICS(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	opts := settings.Board
	opts.Window = layout.FullDay
	board, coachName, ok := coachWeek(w, r, opts)
	if !ok {
		return
	}
	events, err := weekEvents(board)
	if err != nil {
		internalError(w, err)
		return
	}
	name := fmt.Sprintf("%s, week of %s", coachName, board.WeekStart.Format(dateLayout))
	body := ics.EncodeCalendar(name, events, timeNow())

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "coach-week-"+board.WeekStart.Format(dateLayout)+".ics"))
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(body))
}

// weekEvents converts the laid-out chips of a week to calendar events.
func weekEvents(board projections.WeekBoard) ([]ics.Event, error) {
	var events []ics.Event
	for _, d := range board.Days {
		for _, c := range d.Chips {
			start, err := chipTime(c.Date, c.StartTime)
			if err != nil {
				return nil, err
			}
			end, err := chipTime(c.Date, c.EndTime)
			if err != nil {
				return nil, err
			}
			var desc []string
			if c.ProgramName != "" {
				desc = append(desc, c.ProgramName)
			}
			if c.Level != "" {
				desc = append(desc, c.Level)
			}
			if c.Note != "" {
				desc = append(desc, c.Note)
			}
			events = append(events, ics.Event{
				UID:         c.Key + "@gymboard",
				Summary:     c.ClassTypeName,
				Description: strings.Join(desc, "\n"),
				Start:       start,
				End:         end,
			})
		}
	}
	return events, nil
}

func chipTime(date, clock string) (time.Time, error) {
	day, err := time.ParseInLocation(dateLayout, date, settings.Location)
	if err != nil {
		return time.Time{}, err
	}
	m, err := layout.ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), m/60, m%60, 0, 0, settings.Location), nil
}

// handleTodaysClasses handles GET /api/classes/today
func handleTodaysClasses(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	opts, err := boardOptions(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	day, err := projections.QueryGetTodaysClasses(r.Context(), projections.TodaysClassesQuery{
		BoardOptions: opts,
		Now:          timeNow(),
		Location:     settings.Location,
	}, weekDeps())
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewDay(day))
}
