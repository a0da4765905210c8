package audit

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListRuns(t *testing.T) {
	w, dir := newTestWriter(t)

	first, err := w.StartRun("dev", "acme", nil)
	require.NoError(t, err)
	require.NoError(t, w.EndRun(first, RunStatusCompleted, RunSummary{
		TotalRows:        10,
		StartingPatterns: 3,
		EndingPatterns:   2,
	}))

	second, err := w.StartRun("dev", "globex", nil)
	require.NoError(t, err)

	reader := NewAuditReader(dir)
	runs, err := reader.ListRuns()
	require.NoError(t, err)
	require.Len(t, runs, 2)

	assert.Equal(t, first, runs[0].RunID)
	assert.Equal(t, RunStatusCompleted, runs[0].Status)
	assert.Equal(t, 10, runs[0].Summary.TotalRows)
	assert.Equal(t, 3, runs[0].Summary.StartingPatterns)
	assert.NotNil(t, runs[0].EndTime)

	assert.Equal(t, second, runs[1].RunID)
	assert.Equal(t, "globex", runs[1].Customer)
	assert.Equal(t, RunStatusInProgress, runs[1].Status)

	latest, err := reader.GetLatestRun()
	require.NoError(t, err)
	assert.Equal(t, second, latest.RunID)
}

func TestGetRun_NotFound(t *testing.T) {
	_, dir := newTestWriter(t)

	_, err := NewAuditReader(dir).GetRun("missing")
	assert.True(t, errors.Is(err, ErrRunNotFound))
}

func TestGetLogDirectory(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, dir, NewAuditReader(dir).GetLogDirectory())
}

func TestListRuns_MissingLog(t *testing.T) {
	runs, err := NewAuditReader(t.TempDir()).ListRuns()
	require.NoError(t, err)
	assert.Empty(t, runs)

	_, err = NewAuditReader(t.TempDir()).GetLatestRun()
	assert.True(t, errors.Is(err, ErrRunNotFound))
}

func TestFilterEvents(t *testing.T) {
	w, dir := newTestWriter(t)

	runID, err := w.StartRun("dev", "acme", nil)
	require.NoError(t, err)
	require.NoError(t, w.RecordUnmatched(runID, "prefix", 0, "a"))
	require.NoError(t, w.RecordUnmatched(runID, "suffix", 1, "b"))
	require.NoError(t, w.RecordPatterns(runID, "suffix", 2, nil))

	events, err := NewAuditReader(dir).FilterEvents(runID, EventFilter{
		EventTypes: []EventType{EventUnmatchedTag},
		Location:   "suffix",
	})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "b", events[0].Tag)
}
