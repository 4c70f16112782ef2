package web

import (
	"fmt"
	"net/http"
	"strings"

	classTypeDomain "gymboard/internal/domain/classtype"
	coachDomain "gymboard/internal/domain/coach"
	programDomain "gymboard/internal/domain/program"
)

// handlePrograms handles GET/POST/PUT/DELETE for /api/programs
func handlePrograms(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		if id := r.URL.Query().Get("id"); id != "" {
			p, err := stores.ProgramStore.GetByID(ctx, id)
			if err != nil {
				storeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, p)
			return
		}
		list, err := stores.ProgramStore.List(ctx)
		if err != nil {
			internalError(w, err)
			return
		}
		writeList(w, list)

	case http.MethodPost, http.MethodPut:
		var input struct {
			Name string `json:"Name"`
			Type string `json:"Type"`
		}
		if err := strictDecode(r, &input); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}
		p := programDomain.Program{ID: generateID(), Name: strings.TrimSpace(input.Name), Type: strings.ToLower(input.Type)}
		status := http.StatusCreated
		if r.Method == http.MethodPut {
			id, ok := requireID(w, r)
			if !ok {
				return
			}
			if _, err := stores.ProgramStore.GetByID(ctx, id); err != nil {
				storeError(w, err)
				return
			}
			p.ID, status = id, http.StatusOK
		}
		if err := p.Validate(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := stores.ProgramStore.Save(ctx, p); err != nil {
			internalError(w, err)
			return
		}
		writeJSON(w, status, p)

	case http.MethodDelete:
		id, ok := requireID(w, r)
		if !ok {
			return
		}
		cts, err := stores.ClassTypeStore.ListByProgramID(ctx, id)
		if err != nil {
			internalError(w, err)
			return
		}
		if len(cts) > 0 {
			storeError(w, fmt.Errorf("program is used by %d class types: %w", len(cts), errInUse))
			return
		}
		if err := stores.ProgramStore.Delete(ctx, id); err != nil {
			storeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		methodNotAllowed(w)
	}
}

// classTypeView adds rendered description HTML to a class type.
type classTypeView struct {
	classTypeDomain.ClassType
	DescriptionHTML string
}

// handleClassTypes handles GET/POST/PUT/DELETE for /api/class-types
func handleClassTypes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		if id := q.Get("id"); id != "" {
			ct, err := stores.ClassTypeStore.GetByID(ctx, id)
			if err != nil {
				storeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, classTypeView{ClassType: ct, DescriptionHTML: renderMarkdown(ct.Description)})
			return
		}
		var (
			list []classTypeDomain.ClassType
			err  error
		)
		if programID := q.Get("program_id"); programID != "" {
			list, err = stores.ClassTypeStore.ListByProgramID(ctx, programID)
		} else {
			list, err = stores.ClassTypeStore.List(ctx)
		}
		if err != nil {
			internalError(w, err)
			return
		}
		views := make([]classTypeView, 0, len(list))
		for _, ct := range list {
			views = append(views, classTypeView{ClassType: ct, DescriptionHTML: renderMarkdown(ct.Description)})
		}
		writeList(w, views)

	case http.MethodPost, http.MethodPut:
		var input struct {
			ProgramID   string `json:"ProgramID"`
			Name        string `json:"Name"`
			Description string `json:"Description"`
			Level       string `json:"Level"`
			Color       string `json:"Color"`
			Capacity    int    `json:"Capacity"`
		}
		if err := strictDecode(r, &input); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}
		ct := classTypeDomain.ClassType{
			ID:          generateID(),
			ProgramID:   input.ProgramID,
			Name:        strings.TrimSpace(input.Name),
			Description: input.Description,
			Level:       input.Level,
			Color:       strings.ToLower(input.Color),
			Capacity:    input.Capacity,
		}
		status := http.StatusCreated
		if r.Method == http.MethodPut {
			id, ok := requireID(w, r)
			if !ok {
				return
			}
			if _, err := stores.ClassTypeStore.GetByID(ctx, id); err != nil {
				storeError(w, err)
				return
			}
			ct.ID, status = id, http.StatusOK
		}
		if err := ct.Validate(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if _, err := stores.ProgramStore.GetByID(ctx, ct.ProgramID); err != nil {
			storeError(w, err)
			return
		}
		if err := stores.ClassTypeStore.Save(ctx, ct); err != nil {
			internalError(w, err)
			return
		}
		writeJSON(w, status, ct)

	case http.MethodDelete:
		id, ok := requireID(w, r)
		if !ok {
			return
		}
		scheds, err := stores.ScheduleStore.ListByClassTypeID(ctx, id)
		if err != nil {
			internalError(w, err)
			return
		}
		if len(scheds) > 0 {
			storeError(w, fmt.Errorf("class type is used by %d schedules: %w", len(scheds), errInUse))
			return
		}
		sessions, err := stores.SessionStore.CountByClassTypeID(ctx, id)
		if err != nil {
			internalError(w, err)
			return
		}
		if sessions > 0 {
			storeError(w, fmt.Errorf("class type is used by %d dated sessions: %w", sessions, errInUse))
			return
		}
		if err := stores.ClassTypeStore.Delete(ctx, id); err != nil {
			storeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		methodNotAllowed(w)
	}
}

// handleCoaches handles GET/POST/PUT/DELETE for /api/coaches
func handleCoaches(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		if id := r.URL.Query().Get("id"); id != "" {
			c, err := stores.CoachStore.GetByID(ctx, id)
			if err != nil {
				storeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, c)
			return
		}
		list, err := stores.CoachStore.List(ctx)
		if err != nil {
			internalError(w, err)
			return
		}
		writeList(w, list)

	case http.MethodPost, http.MethodPut:
		var input struct {
			Name   string `json:"Name"`
			Email  string `json:"Email"`
			Active *bool  `json:"Active"`
		}
		if err := strictDecode(r, &input); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}
		c := coachDomain.Coach{ID: generateID(), Name: strings.TrimSpace(input.Name), Email: strings.TrimSpace(input.Email), Active: true}
		if input.Active != nil {
			c.Active = *input.Active
		}
		status := http.StatusCreated
		if r.Method == http.MethodPut {
			id, ok := requireID(w, r)
			if !ok {
				return
			}
			if _, err := stores.CoachStore.GetByID(ctx, id); err != nil {
				storeError(w, err)
				return
			}
			c.ID, status = id, http.StatusOK
		}
		if err := c.Validate(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := stores.CoachStore.Save(ctx, c); err != nil {
			internalError(w, err)
			return
		}
		writeJSON(w, status, c)

	case http.MethodDelete:
		id, ok := requireID(w, r)
		if !ok {
			return
		}
		scheds, err := stores.ScheduleStore.ListByCoachID(ctx, id)
		if err != nil {
			internalError(w, err)
			return
		}
		if len(scheds) > 0 {
			storeError(w, fmt.Errorf("coach is assigned to %d schedules: %w", len(scheds), errInUse))
			return
		}
		sessions, err := stores.SessionStore.CountByCoachID(ctx, id)
		if err != nil {
			internalError(w, err)
			return
		}
		if sessions > 0 {
			storeError(w, fmt.Errorf("coach is assigned to %d dated sessions: %w", sessions, errInUse))
			return
		}
		if err := stores.CoachStore.Delete(ctx, id); err != nil {
			storeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		methodNotAllowed(w)
	}
}
