package audit

import (
	"fmt"
	"sort"
	"time"

	"tagpatterns/internal/discovery"
)

// RunStats contains aggregate metrics across all logged runs.
type RunStats struct {
	TotalRuns     int
	CompletedRuns int
	FailedRuns    int
	TotalRows     int            // Rows analysed across completed runs
	ByCustomer    map[string]int // Runs per customer
	// Runs in which each pattern was discovered (top N)
	StartingPatterns map[string]int
	EndingPatterns   map[string]int
	FirstRun         time.Time
	LastRun          time.Time
}

// StatsOptions configures stats aggregation.
type StatsOptions struct {
	Since    *time.Time // Filter to runs after this time
	Customer string     // Filter to one customer (empty = all)
	TopN     int        // Number of top patterns to keep (0 = all)
}

// AggregateStats computes metrics across every run in the log directory.
func AggregateStats(logDir string, opts StatsOptions) (*RunStats, error) {
	reader := NewAuditReader(logDir)

	events, err := reader.readAllEvents()
	if err != nil {
		return nil, fmt.Errorf("failed to read run log: %w", err)
	}
	runs := reader.extractRunInfos(events)

	included := make(map[RunID]bool, len(runs))
	stats := &RunStats{
		ByCustomer: make(map[string]int),
	}

	for _, run := range runs {
		if opts.Since != nil && run.StartTime.Before(*opts.Since) {
			continue
		}
		if opts.Customer != "" && run.Customer != opts.Customer {
			continue
		}
		included[run.RunID] = true

		stats.TotalRuns++
		stats.ByCustomer[run.Customer]++
		switch run.Status {
		case RunStatusCompleted:
			stats.CompletedRuns++
			stats.TotalRows += run.Summary.TotalRows
		case RunStatusFailed:
			stats.FailedRuns++
		}

		if stats.FirstRun.IsZero() || run.StartTime.Before(stats.FirstRun) {
			stats.FirstRun = run.StartTime
		}
		if stats.LastRun.IsZero() || run.StartTime.After(stats.LastRun) {
			stats.LastRun = run.StartTime
		}
	}

	starting := make(map[string]int)
	ending := make(map[string]int)
	for _, event := range events {
		if event.EventType != EventPatternsDiscovered || !included[event.RunID] {
			continue
		}
		counts := starting
		if event.Location == discovery.SuffixName {
			counts = ending
		}
		for _, p := range event.Patterns {
			counts[p]++
		}
	}

	stats.StartingPatterns = filterTopN(starting, opts.TopN)
	stats.EndingPatterns = filterTopN(ending, opts.TopN)

	return stats, nil
}

// filterTopN returns the top N entries from a map by value.
// If n <= 0, returns all entries.
func filterTopN(counts map[string]int, n int) map[string]int {
	if n <= 0 || len(counts) <= n {
		result := make(map[string]int, len(counts))
		for k, v := range counts {
			result[k] = v
		}
		return result
	}

	type kv struct {
		key   string
		value int
	}
	sorted := make([]kv, 0, len(counts))
	for k, v := range counts {
		sorted = append(sorted, kv{k, v})
	}
	sort.Slice(sorted, func(i, j int) bool {
		// value descending, then key ascending for stability
		if sorted[i].value != sorted[j].value {
			return sorted[i].value > sorted[j].value
		}
		return sorted[i].key < sorted[j].key
	})

	result := make(map[string]int, n)
	for i := 0; i < n; i++ {
		result[sorted[i].key] = sorted[i].value
	}

	return result
}
