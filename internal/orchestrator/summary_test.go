package orchestrator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"tagpatterns/internal/matcher"
)

// TestGenerateSummary_NilResult tests that GenerateSummary handles nil result gracefully.
func TestGenerateSummary_NilResult(t *testing.T) {
	duration := 5 * time.Second
	summary := GenerateSummary(nil, duration, true)

	assert.Equal(t, 0, summary.TotalRows)
	assert.Equal(t, duration, summary.Duration)
	assert.Nil(t, summary.ByStartingPattern)
}

func sampleResult() *Result {
	return &Result{
		Customer: "acme",
		Starting: []*matcher.MatchResult{
			{Matched: true, Pattern: "abc"},
			{Matched: true, Pattern: "abc"},
			{Matched: false},
		},
		Ending: []*matcher.MatchResult{
			{Matched: true, Pattern: "9"},
			{Matched: true, Pattern: ""},
			{Matched: true, Pattern: ""},
		},
		StartCatalog:      []string{"abc"},
		EndCatalog:        []string{"9", ""},
		ThresholdStarting: 2,
		ThresholdEnding:   1.5,
	}
}

func TestGenerateSummary_Counts(t *testing.T) {
	summary := GenerateSummary(sampleResult(), time.Second, false)

	assert.Equal(t, "acme", summary.Customer)
	assert.Equal(t, 3, summary.TotalRows)
	assert.Equal(t, 1, summary.UnmatchedStart)
	assert.Equal(t, 0, summary.UnmatchedEnd)
	assert.Equal(t, 1, summary.StartingPatterns)
	assert.Equal(t, 2, summary.EndingPatterns)
	assert.Equal(t, 1.5, summary.ThresholdEnding)

	// per-pattern counts only in verbose mode
	assert.Nil(t, summary.ByStartingPattern)
	assert.Nil(t, summary.ByEndingPattern)
}

func TestGenerateSummary_Verbose(t *testing.T) {
	summary := GenerateSummary(sampleResult(), time.Second, true)

	assert.Equal(t, map[string]int{"abc": 2}, summary.ByStartingPattern)
	assert.Equal(t, map[string]int{"9": 1, "": 2}, summary.ByEndingPattern)
}

func TestRunSummary_AuditSummary(t *testing.T) {
	audit := GenerateSummary(sampleResult(), time.Second, false).AuditSummary()

	assert.Equal(t, 3, audit.TotalRows)
	assert.Equal(t, 1, audit.UnmatchedStart)
	assert.Equal(t, 2, audit.EndingPatterns)
}
