package llm

import (
	"math"
	"slices"
	"sync"
	"time"
)

// StatsSnapshot aggregates recent generation latencies for the stats
// endpoint.
type StatsSnapshot struct {
	Count int     `json:"count"`
	MinMs int64   `json:"min_ms"`
	MaxMs int64   `json:"max_ms"`
	AvgMs float64 `json:"avg_ms"`
	P50Ms int64   `json:"p50_ms"`
	P95Ms int64   `json:"p95_ms"`
	P99Ms int64   `json:"p99_ms"`
}

// Stats keeps a rolling window of generation call latencies. One instance is
// shared by every provider client. Samples arrive in time order, so expiry
// is a prefix drop.
type Stats struct {
	mu     sync.Mutex
	maxAge time.Duration
	at     []time.Time
	ms     []int64
}

func NewStats(maxAge time.Duration) *Stats {
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &Stats{maxAge: maxAge}
}

// Record adds one call latency. Negative durations clamp to zero.
func (s *Stats) Record(durationMs int64) {
	if durationMs < 0 {
		durationMs = 0
	}
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.dropExpired(now)
	s.at = append(s.at, now)
	s.ms = append(s.ms, durationMs)
}

// Snapshot computes aggregates over the samples still inside the window.
func (s *Stats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dropExpired(time.Now())
	if len(s.ms) == 0 {
		return StatsSnapshot{}
	}

	sorted := slices.Clone(s.ms)
	slices.Sort(sorted)
	var sum int64
	for _, v := range sorted {
		sum += v
	}

	return StatsSnapshot{
		Count: len(sorted),
		MinMs: sorted[0],
		MaxMs: sorted[len(sorted)-1],
		AvgMs: float64(sum) / float64(len(sorted)),
		P50Ms: nearestRank(sorted, 50),
		P95Ms: nearestRank(sorted, 95),
		P99Ms: nearestRank(sorted, 99),
	}
}

func (s *Stats) dropExpired(now time.Time) {
	cutoff := now.Add(-s.maxAge)
	n := 0
	for n < len(s.at) && s.at[n].Before(cutoff) {
		n++
	}
	if n > 0 {
		s.at = slices.Delete(s.at, 0, n)
		s.ms = slices.Delete(s.ms, 0, n)
	}
}

// nearestRank is the nearest-rank percentile over an ascending slice.
func nearestRank(sorted []int64, pct float64) int64 {
	i := int(math.Ceil(pct/100*float64(len(sorted)))) - 1
	if i < 0 {
		i = 0
	}
	if i >= len(sorted) {
		i = len(sorted) - 1
	}
	return sorted[i]
}
