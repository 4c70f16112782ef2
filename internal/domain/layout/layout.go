package layout

import "sort"

// Event is one class occurrence on a single day, in minutes.
// Key is carried through for the caller and never inspected.
type Event struct {
	Key         string
	StartMinute int
	EndMinute   int
}

// Position is the lane assignment of one input event.
type Position struct {
	Index       int // index into the input slice
	Column      int
	ColumnCount int
	ClusterID   int
}

// Cluster is a maximal run of temporally connected events.
type Cluster struct {
	ID          int
	StartMinute int
	EndMinute   int
	ColumnCount int
	Members     []int // input indices, in sorted order
}

// Result holds positions parallel to the input and clusters in order of first appearance.
type Result struct {
	Positions []Position
	Clusters  []Cluster
}

// Compute assigns every event to a lane so that no two events in the same
// lane overlap. Events that start exactly when the running cluster ends open
// a new cluster, while a lane may be reused by an event that starts exactly
// when the lane's previous occupant ended.
// PRE: every event belongs to the same day and window
// POST: len(Result.Positions) == len(events); identical input yields identical output
func Compute(events []Event) Result {
	res := Result{
		Positions: make([]Position, len(events)),
		Clusters:  []Cluster{},
	}
	if len(events) == 0 {
		return res
	}

	order := make([]int, len(events))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ea, eb := events[order[a]], events[order[b]]
		if ea.StartMinute != eb.StartMinute {
			return ea.StartMinute < eb.StartMinute
		}
		return ea.EndMinute < eb.EndMinute
	})

	var current []int
	clusterEnd := 0
	for _, idx := range order {
		ev := events[idx]
		if len(current) == 0 || ev.StartMinute < clusterEnd {
			current = append(current, idx)
			if len(current) == 1 || ev.EndMinute > clusterEnd {
				clusterEnd = ev.EndMinute
			}
			continue
		}
		res.Clusters = append(res.Clusters, assignColumns(events, current, len(res.Clusters), res.Positions))
		current = []int{idx}
		clusterEnd = ev.EndMinute
	}
	if len(current) > 0 {
		res.Clusters = append(res.Clusters, assignColumns(events, current, len(res.Clusters), res.Positions))
	}
	return res
}

// assignColumns runs the greedy lane fit for one cluster and writes positions.
func assignColumns(events []Event, members []int, id int, out []Position) Cluster {
	cl := Cluster{
		ID:          id,
		StartMinute: events[members[0]].StartMinute,
		EndMinute:   events[members[0]].EndMinute,
		Members:     members,
	}

	var columnEnds []int
	for _, idx := range members {
		ev := events[idx]
		col := -1
		for c, end := range columnEnds {
			if end <= ev.StartMinute {
				col = c
				break
			}
		}
		if col < 0 {
			col = len(columnEnds)
			columnEnds = append(columnEnds, ev.EndMinute)
		} else {
			columnEnds[col] = ev.EndMinute
		}
		out[idx] = Position{Index: idx, Column: col, ClusterID: id}

		if ev.StartMinute < cl.StartMinute {
			cl.StartMinute = ev.StartMinute
		}
		if ev.EndMinute > cl.EndMinute {
			cl.EndMinute = ev.EndMinute
		}
	}

	cl.ColumnCount = len(columnEnds)
	for _, idx := range members {
		out[idx].ColumnCount = cl.ColumnCount
	}
	return cl
}
