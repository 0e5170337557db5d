// Package perf keeps recent request and query timings in memory and
// summarizes them for the admin perf endpoint.
package perf

import (
	"cmp"
	"math"
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultRingSize is the default capacity of the ring buffer.
const DefaultRingSize = 10000

// EntryKind distinguishes request vs query entries.
type EntryKind uint8

const (
	KindRequest EntryKind = iota
	KindQuery
)

// Entry is a single timing record.
type Entry struct {
	Kind       EntryKind
	Path       string // "GET /clients" or a statement label such as "SELECT member"
	StatusCode int    // 0 for queries
	DurationMs float64
	Timestamp  time.Time
}

// Collector is a fixed-size ring buffer of timing entries. When full the
// oldest entry is overwritten. Aggregation happens only in Snapshot.
type Collector struct {
	mu      sync.Mutex
	entries []Entry
	pos     int
	total   atomic.Int64
}

// NewCollector creates a collector holding at most size entries.
// PRE: size > 0, otherwise DefaultRingSize is used
// POST: Returns a ready-to-use collector
func NewCollector(size int) *Collector {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &Collector{entries: make([]Entry, size)}
}

// Record stores an entry. Safe on a nil collector.
// POST: Entry stored; the oldest entry is dropped when full
func (c *Collector) Record(e Entry) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.entries[c.pos] = e
	c.pos = (c.pos + 1) % len(c.entries)
	c.mu.Unlock()
	c.total.Add(1)
}

// TotalRecorded returns the number of entries ever recorded.
func (c *Collector) TotalRecorded() int64 {
	if c == nil {
		return 0
	}
	return c.total.Load()
}

// Summary holds latency percentiles for one entry kind.
type Summary struct {
	Count  int     `json:"count"`
	Errors int     `json:"errors,omitempty"` // requests answered with 5xx
	P50Ms  float64 `json:"p50_ms"`
	P95Ms  float64 `json:"p95_ms"`
	P99Ms  float64 `json:"p99_ms"`
}

// PathStat aggregates timing for one request path or statement label.
type PathStat struct {
	Path    string  `json:"path"`
	Count   int     `json:"count"`
	AvgMs   float64 `json:"avg_ms"`
	MaxMs   float64 `json:"max_ms"`
	TotalMs float64 `json:"total_ms"`
}

// Snapshot is the aggregated view served to admins.
type Snapshot struct {
	Since          time.Time  `json:"since"`
	TotalRecorded  int64      `json:"total_recorded"`
	Requests       Summary    `json:"requests"`
	Queries        Summary    `json:"queries"`
	SlowestPaths   []PathStat `json:"slowest_paths"`
	SlowestQueries []PathStat `json:"slowest_queries"`
}

// Snapshot aggregates entries recorded at or after since.
// PRE: topN >= 0
// POST: Slowest lists hold at most topN entries, slowest average first
func (c *Collector) Snapshot(since time.Time, topN int) Snapshot {
	if c == nil {
		return Snapshot{Since: since}
	}
	c.mu.Lock()
	buf := slices.Clone(c.entries)
	c.mu.Unlock()

	var reqDurations, queryDurations []float64
	reqStats := make(map[string]*PathStat)
	queryStats := make(map[string]*PathStat)
	failed := 0

	for _, e := range buf {
		if e.Timestamp.IsZero() || e.Timestamp.Before(since) {
			continue
		}
		switch e.Kind {
		case KindRequest:
			reqDurations = append(reqDurations, e.DurationMs)
			accumulate(reqStats, e)
			if e.StatusCode >= 500 {
				failed++
			}
		case KindQuery:
			queryDurations = append(queryDurations, e.DurationMs)
			accumulate(queryStats, e)
		}
	}

	snap := Snapshot{
		Since:          since,
		TotalRecorded:  c.TotalRecorded(),
		Requests:       summarize(reqDurations),
		Queries:        summarize(queryDurations),
		SlowestPaths:   topByAvg(reqStats, topN),
		SlowestQueries: topByAvg(queryStats, topN),
	}
	snap.Requests.Errors = failed
	return snap
}

func accumulate(stats map[string]*PathStat, e Entry) {
	s, ok := stats[e.Path]
	if !ok {
		s = &PathStat{Path: e.Path}
		stats[e.Path] = s
	}
	s.Count++
	s.TotalMs += e.DurationMs
	s.MaxMs = max(s.MaxMs, e.DurationMs)
}

func summarize(durations []float64) Summary {
	if len(durations) == 0 {
		return Summary{}
	}
	slices.Sort(durations)
	return Summary{
		Count: len(durations),
		P50Ms: percentile(durations, 50),
		P95Ms: percentile(durations, 95),
		P99Ms: percentile(durations, 99),
	}
}

// percentile interpolates the p-th percentile of a sorted slice.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (p / 100) * float64(len(sorted)-1)
	lower := int(math.Floor(idx))
	upper := int(math.Ceil(idx))
	if lower == upper || upper >= len(sorted) {
		return sorted[lower]
	}
	frac := idx - float64(lower)
	return sorted[lower]*(1-frac) + sorted[upper]*frac
}

// topByAvg returns the n slowest paths by average, ties broken by path.
func topByAvg(stats map[string]*PathStat, n int) []PathStat {
	list := make([]PathStat, 0, len(stats))
	for _, s := range stats {
		s.AvgMs = s.TotalMs / float64(s.Count)
		list = append(list, *s)
	}
	slices.SortFunc(list, func(a, b PathStat) int {
		if c := cmp.Compare(b.AvgMs, a.AvgMs); c != 0 {
			return c
		}
		return cmp.Compare(a.Path, b.Path)
	})
	if len(list) > n {
		list = list[:n]
	}
	return list
}
