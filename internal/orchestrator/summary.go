package orchestrator

import (
	"time"

	"tagpatterns/internal/audit"
)

// RunSummary contains statistics from a run operation.
type RunSummary struct {
	Customer          string
	TotalRows         int
	UnmatchedStart    int // Rows without a starting pattern
	UnmatchedEnd      int // Rows without an ending pattern
	StartingPatterns  int // Catalog sizes
	EndingPatterns    int
	ThresholdStarting float64
	ThresholdEnding   float64
	Duration          time.Duration

	// Per-pattern row counts, only populated in verbose mode
	ByStartingPattern map[string]int
	ByEndingPattern   map[string]int
}

// GenerateSummary creates a summary from a run result.
// When verbose is true, the per-pattern maps are populated.
func GenerateSummary(result *Result, duration time.Duration, verbose bool) *RunSummary {
	if result == nil {
		return &RunSummary{Duration: duration}
	}

	summary := &RunSummary{
		Customer:          result.Customer,
		TotalRows:         len(result.Starting),
		StartingPatterns:  len(result.StartCatalog),
		EndingPatterns:    len(result.EndCatalog),
		ThresholdStarting: result.ThresholdStarting,
		ThresholdEnding:   result.ThresholdEnding,
		Duration:          duration,
	}
	summary.UnmatchedStart, summary.UnmatchedEnd = result.Unmatched()

	if verbose {
		summary.ByStartingPattern = make(map[string]int)
		summary.ByEndingPattern = make(map[string]int)
		for i := range result.Starting {
			if result.Starting[i].Matched {
				summary.ByStartingPattern[result.Starting[i].Pattern]++
			}
			if result.Ending[i].Matched {
				summary.ByEndingPattern[result.Ending[i].Pattern]++
			}
		}
	}

	return summary
}

// AuditSummary converts the summary to the form stored in the run log.
func (s *RunSummary) AuditSummary() audit.RunSummary {
	return audit.RunSummary{
		TotalRows:        s.TotalRows,
		UnmatchedStart:   s.UnmatchedStart,
		UnmatchedEnd:     s.UnmatchedEnd,
		StartingPatterns: s.StartingPatterns,
		EndingPatterns:   s.EndingPatterns,
	}
}
