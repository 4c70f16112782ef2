package perf

import (
	"math"
	"slices"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultRingSize is the default capacity of the ring buffer.
const DefaultRingSize = 10000

// EntryKind distinguishes request, query and layout entries.
type EntryKind uint8

const (
	KindRequest EntryKind = iota
	KindQuery
	KindLayout
)

// Entry is a single timing record stored in the ring buffer.
type Entry struct {
	Kind       EntryKind
	Path       string // "VERB /path", "VERB table" or board name
	StatusCode int    // HTTP status (0 for queries and layouts)
	DurationMs float64
	Timestamp  time.Time
	Items      int // events laid out (layouts only)
}

// Collector is a fixed-size ring buffer of timing entries.
// When full, the oldest entries are overwritten; aggregation happens in Snapshot.
type Collector struct {
	mu      sync.Mutex
	entries []Entry
	pos     int
	count   atomic.Int64
}

// NewCollector creates a collector holding the last size entries.
// PRE: none; size <= 0 means DefaultRingSize
// POST: Returns a ready-to-use collector
func NewCollector(size int) *Collector {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &Collector{entries: make([]Entry, size)}
}

// Record stores e. A nil collector discards it.
func (c *Collector) Record(e Entry) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.entries[c.pos] = e
	c.pos = (c.pos + 1) % len(c.entries)
	c.mu.Unlock()
	c.count.Add(1)
}

// RecordLayout stores the duration of one board layout pass over items events.
func (c *Collector) RecordLayout(board string, items int, start time.Time) {
	c.Record(Entry{
		Kind:       KindLayout,
		Path:       board,
		DurationMs: msSince(start),
		Timestamp:  start,
		Items:      items,
	})
}

// TotalRecorded returns the number of entries ever recorded.
func (c *Collector) TotalRecorded() int64 {
	if c == nil {
		return 0
	}
	return c.count.Load()
}

// Summary is the latency distribution of one entry kind.
type Summary struct {
	Count int
	P50Ms float64
	P95Ms float64
	P99Ms float64
	MaxMs float64
}

// Stat aggregates timing for one path, statement or board.
type Stat struct {
	Name    string
	Count   int
	AvgMs   float64
	MaxMs   float64
	TotalMs float64
	Items   int // summed layout items
}

// Snapshot is the aggregate view of entries recorded since a point in time.
type Snapshot struct {
	Since         time.Time
	TotalRecorded int64

	Requests     Summary
	ServerErrors int // 5xx responses
	Queries      Summary
	Layouts      Summary
	LayoutItems  int // events laid out across all boards

	SlowestPaths   []Stat
	SlowestQueries []Stat
	SlowestBoards  []Stat
}

type bucket struct {
	durations []float64
	stats     map[string]*Stat
}

func (b *bucket) add(e Entry) {
	b.durations = append(b.durations, e.DurationMs)
	if b.stats == nil {
		b.stats = make(map[string]*Stat)
	}
	st, ok := b.stats[e.Path]
	if !ok {
		st = &Stat{Name: e.Path}
		b.stats[e.Path] = st
	}
	st.Count++
	st.TotalMs += e.DurationMs
	st.Items += e.Items
	st.MaxMs = max(st.MaxMs, e.DurationMs)
}

// Snapshot aggregates entries with Timestamp >= since, keeping the topN slowest per kind.
// PRE: none; a nil collector yields an empty snapshot
// POST: Percentiles use the nearest-rank method
func (c *Collector) Snapshot(since time.Time, topN int) Snapshot {
	snap := Snapshot{Since: since}
	if c == nil {
		return snap
	}
	c.mu.Lock()
	buf := slices.Clone(c.entries)
	c.mu.Unlock()
	snap.TotalRecorded = c.TotalRecorded()

	var requests, queries, layouts bucket
	for _, e := range buf {
		if e.Timestamp.IsZero() || e.Timestamp.Before(since) {
			continue
		}
		switch e.Kind {
		case KindRequest:
			requests.add(e)
			if e.StatusCode >= 500 {
				snap.ServerErrors++
			}
		case KindQuery:
			queries.add(e)
		case KindLayout:
			layouts.add(e)
			snap.LayoutItems += e.Items
		}
	}

	snap.Requests = summarize(requests.durations)
	snap.Queries = summarize(queries.durations)
	snap.Layouts = summarize(layouts.durations)
	snap.SlowestPaths = slowest(requests.stats, topN)
	snap.SlowestQueries = slowest(queries.stats, topN)
	snap.SlowestBoards = slowest(layouts.stats, topN)
	return snap
}

func summarize(durations []float64) Summary {
	if len(durations) == 0 {
		return Summary{}
	}
	sort.Float64s(durations)
	return Summary{
		Count: len(durations),
		P50Ms: nearestRank(durations, 50),
		P95Ms: nearestRank(durations, 95),
		P99Ms: nearestRank(durations, 99),
		MaxMs: durations[len(durations)-1],
	}
}

// nearestRank returns the p-th percentile of a sorted, non-empty slice.
func nearestRank(sorted []float64, p float64) float64 {
	rank := int(math.Ceil(p / 100 * float64(len(sorted))))
	return sorted[min(max(rank, 1), len(sorted))-1]
}

// slowest orders stats by average duration, descending, ties by name.
func slowest(stats map[string]*Stat, n int) []Stat {
	list := make([]Stat, 0, len(stats))
	for _, s := range stats {
		s.AvgMs = s.TotalMs / float64(s.Count)
		list = append(list, *s)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].AvgMs != list[j].AvgMs {
			return list[i].AvgMs > list[j].AvgMs
		}
		return list[i].Name < list[j].Name
	})
	if n >= 0 && len(list) > n {
		list = list[:n]
	}
	return list
}

func msSince(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}
