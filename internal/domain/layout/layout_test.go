package layout_test

import (
	"math/rand"
	"reflect"
	"testing"

	"gymboard/internal/domain/layout"
)

func ev(key string, start, end int) layout.Event {
	return layout.Event{Key: key, StartMinute: start, EndMinute: end}
}

// TestCompute_Scenarios covers the documented board scenarios (minute 0 = 09:00).
func TestCompute_Scenarios(t *testing.T) {
	tests := []struct {
		name         string
		events       []layout.Event
		wantColumns  []int
		wantCounts   []int
		wantClusters []layout.Cluster
	}{
		{
			name:        "two overlapping classes",
			events:      []layout.Event{ev("A", 0, 60), ev("B", 30, 90)},
			wantColumns: []int{0, 1},
			wantCounts:  []int{2, 2},
			wantClusters: []layout.Cluster{
				{ID: 0, StartMinute: 0, EndMinute: 90, ColumnCount: 2, Members: []int{0, 1}},
			},
		},
		{
			name:        "back to back classes do not cluster",
			events:      []layout.Event{ev("A", 0, 60), ev("B", 60, 120)},
			wantColumns: []int{0, 0},
			wantCounts:  []int{1, 1},
			wantClusters: []layout.Cluster{
				{ID: 0, StartMinute: 0, EndMinute: 60, ColumnCount: 1, Members: []int{0}},
				{ID: 1, StartMinute: 60, EndMinute: 120, ColumnCount: 1, Members: []int{1}},
			},
		},
		{
			name:        "three identical classes keep input order",
			events:      []layout.Event{ev("A", 0, 60), ev("B", 0, 60), ev("C", 0, 60)},
			wantColumns: []int{0, 1, 2},
			wantCounts:  []int{3, 3, 3},
			wantClusters: []layout.Cluster{
				{ID: 0, StartMinute: 0, EndMinute: 60, ColumnCount: 3, Members: []int{0, 1, 2}},
			},
		},
		{
			name:        "chained overlap reuses a freed lane",
			events:      []layout.Event{ev("A", 0, 30), ev("B", 10, 20), ev("C", 25, 40)},
			wantColumns: []int{0, 1, 1},
			wantCounts:  []int{2, 2, 2},
			wantClusters: []layout.Cluster{
				{ID: 0, StartMinute: 0, EndMinute: 40, ColumnCount: 2, Members: []int{0, 1, 2}},
			},
		},
		{
			name:        "unsorted input is sorted by start then end",
			events:      []layout.Event{ev("late", 120, 180), ev("long", 0, 90), ev("short", 0, 30)},
			wantColumns: []int{0, 1, 0},
			wantCounts:  []int{1, 2, 2},
			wantClusters: []layout.Cluster{
				{ID: 0, StartMinute: 0, EndMinute: 90, ColumnCount: 2, Members: []int{2, 1}},
				{ID: 1, StartMinute: 120, EndMinute: 180, ColumnCount: 1, Members: []int{0}},
			},
		},
		{
			name:        "single class",
			events:      []layout.Event{ev("A", 15, 75)},
			wantColumns: []int{0},
			wantCounts:  []int{1},
			wantClusters: []layout.Cluster{
				{ID: 0, StartMinute: 15, EndMinute: 75, ColumnCount: 1, Members: []int{0}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := layout.Compute(tt.events)
			if len(res.Positions) != len(tt.events) {
				t.Fatalf("positions = %d, want %d", len(res.Positions), len(tt.events))
			}
			for i, p := range res.Positions {
				if p.Index != i {
					t.Errorf("position[%d].Index = %d", i, p.Index)
				}
				if p.Column != tt.wantColumns[i] {
					t.Errorf("event %s column = %d, want %d", tt.events[i].Key, p.Column, tt.wantColumns[i])
				}
				if p.ColumnCount != tt.wantCounts[i] {
					t.Errorf("event %s columnCount = %d, want %d", tt.events[i].Key, p.ColumnCount, tt.wantCounts[i])
				}
			}
			if !reflect.DeepEqual(res.Clusters, tt.wantClusters) {
				t.Errorf("clusters = %+v, want %+v", res.Clusters, tt.wantClusters)
			}
		})
	}
}

// TestCompute_Empty verifies empty input yields empty outputs.
func TestCompute_Empty(t *testing.T) {
	res := layout.Compute(nil)
	if len(res.Positions) != 0 || len(res.Clusters) != 0 {
		t.Fatalf("expected empty result, got %+v", res)
	}
}

// TestCompute_ZeroWidth verifies a degenerate event is accepted and does not extend a cluster by itself.
func TestCompute_ZeroWidth(t *testing.T) {
	res := layout.Compute([]layout.Event{ev("point", 30, 30), ev("next", 30, 60)})
	if len(res.Clusters) != 2 {
		t.Fatalf("clusters = %d, want 2", len(res.Clusters))
	}
	if res.Positions[1].Column != 0 || res.Positions[1].ColumnCount != 1 {
		t.Errorf("next = %+v, want column 0 of 1", res.Positions[1])
	}
}

// TestCompute_Properties checks layout invariants against random days.
func TestCompute_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for round := 0; round < 500; round++ {
		n := rng.Intn(25)
		events := make([]layout.Event, n)
		for i := range events {
			start := rng.Intn(16) * 15
			dur := (rng.Intn(8) + 1) * 15
			events[i] = ev("", start, start+dur)
		}

		res := layout.Compute(events)

		// No two events in the same lane of a cluster overlap.
		for i := range events {
			for j := i + 1; j < len(events); j++ {
				pi, pj := res.Positions[i], res.Positions[j]
				if pi.ClusterID != pj.ClusterID || pi.Column != pj.Column {
					continue
				}
				a, b := events[i], events[j]
				if a.StartMinute < b.EndMinute && b.StartMinute < a.EndMinute {
					t.Fatalf("round %d: events %d and %d share column %d but overlap", round, i, j, pi.Column)
				}
			}
		}

		// Every event appears in exactly one cluster.
		seen := make([]int, n)
		for _, cl := range res.Clusters {
			for _, idx := range cl.Members {
				seen[idx]++
				if res.Positions[idx].ClusterID != cl.ID {
					t.Fatalf("round %d: event %d in cluster %d but positioned in %d", round, idx, cl.ID, res.Positions[idx].ClusterID)
				}
			}
		}
		for idx, c := range seen {
			if c != 1 {
				t.Fatalf("round %d: event %d appears in %d clusters", round, idx, c)
			}
		}

		// Clusters are ordered and disjoint except for touching boundaries.
		for k := 1; k < len(res.Clusters); k++ {
			prev, cur := res.Clusters[k-1], res.Clusters[k]
			if prev.EndMinute > cur.StartMinute {
				t.Fatalf("round %d: cluster %d ends at %d after cluster %d starts at %d", round, prev.ID, prev.EndMinute, cur.ID, cur.StartMinute)
			}
		}

		// Column count matches the lanes actually used and the peak concurrency.
		for _, cl := range res.Clusters {
			used := 0
			for _, idx := range cl.Members {
				if c := res.Positions[idx].Column + 1; c > used {
					used = c
				}
				if res.Positions[idx].ColumnCount != cl.ColumnCount {
					t.Fatalf("round %d: event %d columnCount %d != cluster %d", round, idx, res.Positions[idx].ColumnCount, cl.ColumnCount)
				}
			}
			if used != cl.ColumnCount {
				t.Fatalf("round %d: cluster %d uses %d columns, reports %d", round, cl.ID, used, cl.ColumnCount)
			}
			if peak := peakConcurrency(events, cl.Members); peak != cl.ColumnCount {
				t.Fatalf("round %d: cluster %d peak concurrency %d, columnCount %d", round, cl.ID, peak, cl.ColumnCount)
			}
		}

		// Same input, same output.
		if again := layout.Compute(events); !reflect.DeepEqual(res, again) {
			t.Fatalf("round %d: layout is not deterministic", round)
		}
	}
}

func peakConcurrency(events []layout.Event, members []int) int {
	peak := 0
	for _, i := range members {
		at := events[i].StartMinute
		n := 0
		for _, j := range members {
			if events[j].StartMinute <= at && at < events[j].EndMinute {
				n++
			}
		}
		if n > peak {
			peak = n
		}
	}
	return peak
}
