package projections

import (
	"context"
	"time"

	"gymboard/internal/domain/classtype"
	"gymboard/internal/domain/coach"
	"gymboard/internal/domain/layout"
	"gymboard/internal/domain/program"
)

// Chip is one class rendered on a board column.
type Chip struct {
	Key           string // schedule id, or session id for dated sessions
	ScheduleID    string
	SessionID     string
	ClassTypeID   string
	ClassTypeName string
	Description   string // markdown
	Level         string
	Color         string
	Capacity      int
	ProgramID     string
	ProgramName   string
	ProgramType   string
	CoachID       string
	CoachName     string
	Date          string // YYYY-MM-DD, empty on the structure board
	StartTime     string
	EndTime       string
	Note          string
	Override      bool // a dated session replaced the generated instance
	OneOff        bool

	// Layout output. Minutes are clipped to the board window.
	StartMinute int
	EndMinute   int
	Column      int
	ColumnCount int
	ClusterID   int
	Hidden      bool // behind a "+N more" affordance
	TopPct      float64
	HeightPct   float64
	LeftPct     float64
	WidthPct    float64
}

// BoardDay is one laid-out column of a board.
type BoardDay struct {
	Day           string
	Date          string // empty on the structure board
	Chips         []Chip
	Clusters      []layout.Cluster
	Overflow      []layout.Overflow
	Cancelled     []Chip // week board only, not laid out
	OutsideWindow int    // chips dropped because they do not intersect the window
}

// BoardOptions are the display settings shared by every board.
type BoardOptions struct {
	Window     layout.Window
	MaxColumns int    // 0 disables "+N more" collapse
	WeekStart  string // schedule.Monday or schedule.Sunday
}

func (o BoardOptions) window() layout.Window {
	if o.Window.Validate() != nil {
		return layout.FullDay
	}
	return o.Window
}

// catalog resolves the names a chip displays.
type catalog struct {
	classTypes map[string]classtype.ClassType
	programs   map[string]program.Program
	coaches    map[string]coach.Coach
}

func loadCatalog(ctx context.Context, cts ClassTypeLister, ps ProgramLister, cs CoachLister) (catalog, error) {
	c := catalog{
		classTypes: map[string]classtype.ClassType{},
		programs:   map[string]program.Program{},
		coaches:    map[string]coach.Coach{},
	}
	classTypes, err := cts.List(ctx)
	if err != nil {
		return c, err
	}
	for _, ct := range classTypes {
		c.classTypes[ct.ID] = ct
	}
	programs, err := ps.List(ctx)
	if err != nil {
		return c, err
	}
	for _, p := range programs {
		c.programs[p.ID] = p
	}
	if cs != nil {
		coaches, err := cs.List(ctx)
		if err != nil {
			return c, err
		}
		for _, co := range coaches {
			c.coaches[co.ID] = co
		}
	}
	return c, nil
}

// chip builds an unpositioned chip; ok is false when the class type is unknown.
func (c catalog) chip(classTypeID, coachID, start, end string) (Chip, bool) {
	ct, ok := c.classTypes[classTypeID]
	if !ok {
		return Chip{}, false
	}
	p := c.programs[ct.ProgramID]
	return Chip{
		ClassTypeID:   ct.ID,
		ClassTypeName: ct.Name,
		Description:   ct.Description,
		Level:         ct.Level,
		Color:         ct.DisplayColor(),
		Capacity:      ct.Capacity,
		ProgramID:     p.ID,
		ProgramName:   p.Name,
		ProgramType:   p.Type,
		CoachID:       coachID,
		CoachName:     c.coaches[coachID].Name,
		StartTime:     start,
		EndTime:       end,
	}, true
}

// layoutDay clips chips to the window, runs the overlap layout and fills in geometry.
// PRE: every chip has parseable StartTime and EndTime
// POST: Chips keep their input order; chips outside the window are counted, not returned
func layoutDay(day BoardDay, chips []Chip, opts BoardOptions) BoardDay {
	w := opts.window()
	visible := make([]Chip, 0, len(chips))
	for _, ch := range chips {
		start, err1 := layout.ParseClock(ch.StartTime)
		end, err2 := layout.ParseClock(ch.EndTime)
		if err1 != nil || err2 != nil {
			day.OutsideWindow++
			continue
		}
		s, e, ok := w.Clip(start, end)
		if !ok {
			day.OutsideWindow++
			continue
		}
		ch.StartMinute, ch.EndMinute = s, e
		visible = append(visible, ch)
	}

	events := make([]layout.Event, len(visible))
	for i, ch := range visible {
		events[i] = layout.Event{Key: ch.Key, StartMinute: ch.StartMinute, EndMinute: ch.EndMinute}
	}
	res := layout.Compute(events)

	span := float64(w.Length())
	for i, p := range res.Positions {
		ch := &visible[i]
		ch.Column = p.Column
		ch.ColumnCount = p.ColumnCount
		ch.ClusterID = p.ClusterID
		ch.Hidden = layout.Hidden(res, i, opts.MaxColumns)
		ch.TopPct = float64(ch.StartMinute-w.StartMinute) / span * 100
		ch.HeightPct = float64(ch.EndMinute-ch.StartMinute) / span * 100
		ch.WidthPct = 100 / float64(p.ColumnCount)
		ch.LeftPct = float64(p.Column) * ch.WidthPct
	}

	day.Chips = visible
	day.Clusters = res.Clusters
	day.Overflow = layout.Collapse(res, opts.MaxColumns)
	if day.Overflow == nil {
		day.Overflow = []layout.Overflow{}
	}
	return day
}

func recordLayout(rec LayoutRecorder, board string, days []BoardDay, start time.Time) {
	if rec == nil {
		return
	}
	n := 0
	for _, d := range days {
		n += len(d.Chips)
	}
	rec.RecordLayout(board, n, start)
}
