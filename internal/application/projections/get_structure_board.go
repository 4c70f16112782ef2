package projections

import (
	"context"
	"time"

	"gymboard/internal/domain/schedule"
)

// GetStructureBoardDeps holds dependencies for the projection.
type GetStructureBoardDeps struct {
	ScheduleStore  ScheduleLister
	ClassTypeStore ClassTypeLister
	ProgramStore   ProgramLister
	CoachStore     CoachLister
	Recorder       LayoutRecorder
}

// StructureBoardQuery selects what the structure board shows.
type StructureBoardQuery struct {
	BoardOptions
	CoachID string // optional; restricts to one coach's slots
}

// StructureBoard is the recurring weekly class structure, one column per weekday.
type StructureBoard struct {
	Days []BoardDay
}

// QueryGetStructureBoard lays out every weekly schedule slot by weekday.
// PRE: deps stores are non-nil
// POST: Returns seven days in week order; slots with unknown class types are skipped
func QueryGetStructureBoard(ctx context.Context, query StructureBoardQuery, deps GetStructureBoardDeps) (StructureBoard, error) {
	schedules, err := deps.ScheduleStore.List(ctx)
	if err != nil {
		return StructureBoard{}, err
	}
	cat, err := loadCatalog(ctx, deps.ClassTypeStore, deps.ProgramStore, deps.CoachStore)
	if err != nil {
		return StructureBoard{}, err
	}

	byDay := make(map[string][]Chip)
	for _, s := range schedules {
		if query.CoachID != "" && s.CoachID != query.CoachID {
			continue
		}
		ch, ok := cat.chip(s.ClassTypeID, s.CoachID, s.StartTime, s.EndTime)
		if !ok {
			continue
		}
		ch.Key = s.ID
		ch.ScheduleID = s.ID
		byDay[s.Day] = append(byDay[s.Day], ch)
	}

	start := time.Now()
	board := StructureBoard{}
	for _, day := range schedule.OrderedDays(query.WeekStart) {
		board.Days = append(board.Days, layoutDay(BoardDay{Day: day}, byDay[day], query.BoardOptions))
	}
	recordLayout(deps.Recorder, "structure", board.Days, start)
	return board, nil
}
