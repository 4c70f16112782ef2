package web

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"gymboard/internal/adapters/ics"
	"gymboard/internal/adapters/storage"
	"gymboard/internal/application/listutil"
	"gymboard/internal/application/orchestrators"
	holidayDomain "gymboard/internal/domain/holiday"
	scheduleDomain "gymboard/internal/domain/schedule"
	sessionDomain "gymboard/internal/domain/session"
	termDomain "gymboard/internal/domain/term"
)

// defaultSessionSpan is the range listed when /api/sessions has no "to".
const defaultSessionSpan = 28 * 24 * time.Hour

// handleSchedules handles GET/POST/PUT/DELETE for /api/schedules
func handleSchedules(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		if id := q.Get("id"); id != "" {
			s, err := stores.ScheduleStore.GetByID(ctx, id)
			if err != nil {
				storeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, s)
			return
		}
		var (
			list []scheduleDomain.Schedule
			err  error
		)
		switch {
		case q.Get("day") != "":
			list, err = stores.ScheduleStore.ListByDay(ctx, strings.ToLower(q.Get("day")))
		case q.Get("coach_id") != "":
			list, err = stores.ScheduleStore.ListByCoachID(ctx, q.Get("coach_id"))
		default:
			list, err = stores.ScheduleStore.List(ctx)
		}
		if err != nil {
			internalError(w, err)
			return
		}
		writeList(w, list)

	case http.MethodPost, http.MethodPut:
		var input struct {
			ClassTypeID string `json:"ClassTypeID"`
			CoachID     string `json:"CoachID"`
			Day         string `json:"Day"`
			StartTime   string `json:"StartTime"`
			EndTime     string `json:"EndTime"`
		}
		if err := strictDecode(r, &input); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}
		sched := scheduleDomain.Schedule{
			ID:          generateID(),
			ClassTypeID: input.ClassTypeID,
			CoachID:     input.CoachID,
			Day:         strings.ToLower(input.Day),
			StartTime:   strings.TrimSpace(input.StartTime),
			EndTime:     strings.TrimSpace(input.EndTime),
		}
		status := http.StatusCreated
		if r.Method == http.MethodPut {
			id, ok := requireID(w, r)
			if !ok {
				return
			}
			if _, err := stores.ScheduleStore.GetByID(ctx, id); err != nil {
				storeError(w, err)
				return
			}
			sched.ID, status = id, http.StatusOK
		}
		if err := sched.Validate(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if !referencesExist(w, r, sched.ClassTypeID, sched.CoachID) {
			return
		}
		if err := stores.ScheduleStore.Save(ctx, sched); err != nil {
			internalError(w, err)
			return
		}
		writeJSON(w, status, sched)

	case http.MethodDelete:
		id, ok := requireID(w, r)
		if !ok {
			return
		}
		if err := stores.ScheduleStore.Delete(ctx, id); err != nil {
			storeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		methodNotAllowed(w)
	}
}

// referencesExist checks that the class type and optional coach exist, writing 404 if not.
func referencesExist(w http.ResponseWriter, r *http.Request, classTypeID, coachID string) bool {
	if _, err := stores.ClassTypeStore.GetByID(r.Context(), classTypeID); err != nil {
		storeError(w, err)
		return false
	}
	if coachID != "" {
		if _, err := stores.CoachStore.GetByID(r.Context(), coachID); err != nil {
			storeError(w, err)
			return false
		}
	}
	return true
}

// handleTerms handles GET/POST/PUT/DELETE for /api/terms
func handleTerms(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		list, err := stores.TermStore.List(ctx)
		if err != nil {
			internalError(w, err)
			return
		}
		writeList(w, list)

	case http.MethodPost, http.MethodPut:
		var input struct {
			Name      string `json:"Name"`
			StartDate string `json:"StartDate"`
			EndDate   string `json:"EndDate"`
		}
		if err := strictDecode(r, &input); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}
		start, err := parseDate("StartDate", input.StartDate)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		end, err := parseDate("EndDate", input.EndDate)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		t := termDomain.Term{ID: generateID(), Name: strings.TrimSpace(input.Name), StartDate: start, EndDate: end}
		status := http.StatusCreated
		if r.Method == http.MethodPut {
			id, ok := requireID(w, r)
			if !ok {
				return
			}
			if _, err := stores.TermStore.GetByID(ctx, id); err != nil {
				storeError(w, err)
				return
			}
			t.ID, status = id, http.StatusOK
		}
		if err := t.Validate(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := stores.TermStore.Save(ctx, t); err != nil {
			internalError(w, err)
			return
		}
		writeJSON(w, status, t)

	case http.MethodDelete:
		id, ok := requireID(w, r)
		if !ok {
			return
		}
		if err := stores.TermStore.Delete(ctx, id); err != nil {
			storeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		methodNotAllowed(w)
	}
}

// handleHolidays handles GET/POST/DELETE for /api/holidays
// GET accepts ?source= to list one feed or "manual".
func handleHolidays(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		var (
			list []holidayDomain.Holiday
			err  error
		)
		if source := r.URL.Query().Get("source"); source != "" {
			list, err = stores.HolidayStore.ListBySource(ctx, source)
		} else {
			list, err = stores.HolidayStore.List(ctx)
		}
		if err != nil {
			internalError(w, err)
			return
		}
		writeList(w, list)

	case http.MethodPost:
		var input struct {
			Name      string `json:"Name"`
			StartDate string `json:"StartDate"`
			EndDate   string `json:"EndDate"`
		}
		if err := strictDecode(r, &input); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}
		start, err := parseDate("StartDate", input.StartDate)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		end := start
		if input.EndDate != "" {
			if end, err = parseDate("EndDate", input.EndDate); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
		}
		h := holidayDomain.Holiday{
			ID:        generateID(),
			Name:      strings.TrimSpace(input.Name),
			StartDate: start,
			EndDate:   end,
			Source:    holidayDomain.SourceManual,
		}
		if err := h.Validate(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := stores.HolidayStore.Save(ctx, h); err != nil {
			internalError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, h)

	case http.MethodDelete:
		id, ok := requireID(w, r)
		if !ok {
			return
		}
		if err := stores.HolidayStore.Delete(ctx, id); err != nil {
			storeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		methodNotAllowed(w)
	}
}

// handleHolidayImport handles POST /api/holidays/import?feed=<id>
func handleHolidayImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	feed, err := orchestrators.FindFeed(settings.Feeds, r.URL.Query().Get("feed"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if settings.Fetcher == nil {
		http.Error(w, "holiday import is not configured", http.StatusServiceUnavailable)
		return
	}
	res, err := orchestrators.ExecuteImportHolidays(r.Context(), feed, importDeps())
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, res)
	case errors.Is(err, ics.ErrEmptyFeed), errors.Is(err, orchestrators.ErrFeedUnavailable):
		http.Error(w, err.Error(), http.StatusBadGateway)
	default:
		internalError(w, err)
	}
}

// sessionPage is the paginated /api/sessions response.
type sessionPage struct {
	Items []sessionDomain.Session
	Page  listutil.PageInfo
}

// handleSessions handles GET/POST/PUT/DELETE for /api/sessions
// GET lists [from, to) paginated with page and per_page.
func handleSessions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		if id := q.Get("id"); id != "" {
			s, err := stores.SessionStore.GetByID(ctx, id)
			if err != nil {
				storeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, s)
			return
		}
		from, err := queryDate(r, "from")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		from = time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, settings.Location)
		to := from.Add(defaultSessionSpan)
		if q.Get("to") != "" {
			if to, err = parseDate("to", q.Get("to")); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
		}
		if !to.After(from) {
			http.Error(w, "to must be after from", http.StatusBadRequest)
			return
		}

		pp := listutil.ParsePageParams(q)
		total, err := stores.SessionStore.CountBetween(ctx, from, to)
		if err != nil {
			internalError(w, err)
			return
		}
		info := listutil.NewPageInfo(pp.Page, pp.PerPage, total)
		items, err := stores.SessionStore.ListPage(ctx, from, to, info.PerPage, info.Offset())
		if err != nil {
			internalError(w, err)
			return
		}
		if items == nil {
			items = []sessionDomain.Session{}
		}
		writeJSON(w, http.StatusOK, sessionPage{Items: items, Page: info})

	case http.MethodPost, http.MethodPut:
		s, ok := decodeSession(w, r)
		if !ok {
			return
		}
		status := http.StatusCreated
		if r.Method == http.MethodPut {
			id, ok := requireID(w, r)
			if !ok {
				return
			}
			if _, err := stores.SessionStore.GetByID(ctx, id); err != nil {
				storeError(w, err)
				return
			}
			s.ID, status = id, http.StatusOK
		}
		if err := s.Validate(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if !referencesExist(w, r, s.ClassTypeID, s.CoachID) {
			return
		}
		if !overrideFree(w, r, s) {
			return
		}
		if err := stores.SessionStore.Save(ctx, s); err != nil {
			storeError(w, err)
			return
		}
		writeJSON(w, status, s)

	case http.MethodDelete:
		id, ok := requireID(w, r)
		if !ok {
			return
		}
		if err := stores.SessionStore.Delete(ctx, id); err != nil {
			storeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		methodNotAllowed(w)
	}
}

// overrideFree writes 409 when another session already overrides s's schedule on its date.
func overrideFree(w http.ResponseWriter, r *http.Request, s sessionDomain.Session) bool {
	if !s.IsOverride() {
		return true
	}
	existing, err := stores.SessionStore.GetOverride(r.Context(), s.ScheduleID, s.Date)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return true
	case err != nil:
		internalError(w, err)
		return false
	case existing.ID != s.ID:
		storeError(w, fmt.Errorf("schedule %s already has override %s on %s: %w", s.ScheduleID, existing.ID, s.DateKey(), storage.ErrConflict))
		return false
	}
	return true
}

// decodeSession reads a session body. An override (ScheduleID set) inherits the
// schedule's class type, coach and times for any field left empty.
func decodeSession(w http.ResponseWriter, r *http.Request) (sessionDomain.Session, bool) {
	var input struct {
		ScheduleID  string `json:"ScheduleID"`
		ClassTypeID string `json:"ClassTypeID"`
		CoachID     string `json:"CoachID"`
		Date        string `json:"Date"`
		StartTime   string `json:"StartTime"`
		EndTime     string `json:"EndTime"`
		Status      string `json:"Status"`
		Note        string `json:"Note"`
	}
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return sessionDomain.Session{}, false
	}
	date, err := parseDate("Date", input.Date)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return sessionDomain.Session{}, false
	}
	s := sessionDomain.Session{
		ID:          generateID(),
		ScheduleID:  input.ScheduleID,
		ClassTypeID: input.ClassTypeID,
		CoachID:     input.CoachID,
		Date:        date,
		StartTime:   strings.TrimSpace(input.StartTime),
		EndTime:     strings.TrimSpace(input.EndTime),
		Status:      strings.ToLower(input.Status),
		Note:        input.Note,
	}
	if s.Status == "" {
		s.Status = sessionDomain.StatusScheduled
	}
	if s.ScheduleID == "" {
		return s, true
	}

	sched, err := stores.ScheduleStore.GetByID(r.Context(), s.ScheduleID)
	if err != nil {
		storeError(w, err)
		return sessionDomain.Session{}, false
	}
	if scheduleDomain.DayFromWeekday(date.Weekday()) != sched.Day {
		http.Error(w, fmt.Sprintf("schedule %s runs on %s, not %s", sched.ID, sched.Day, input.Date), http.StatusBadRequest)
		return sessionDomain.Session{}, false
	}
	if s.ClassTypeID == "" {
		s.ClassTypeID = sched.ClassTypeID
	}
	if s.CoachID == "" {
		s.CoachID = sched.CoachID
	}
	if s.StartTime == "" {
		s.StartTime = sched.StartTime
	}
	if s.EndTime == "" {
		s.EndTime = sched.EndTime
	}
	return s, true
}
