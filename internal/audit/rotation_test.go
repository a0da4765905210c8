package audit

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNeedsRotation(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, LogFileName)

	rm := NewRotationManager(AuditConfig{LogDirectory: dir, RotationSize: 10})

	needed, err := rm.NeedsRotation(logPath)
	require.NoError(t, err)
	assert.False(t, needed, "missing log never needs rotation")

	require.NoError(t, os.WriteFile(logPath, []byte("short"), 0644))
	needed, err = rm.NeedsRotation(logPath)
	require.NoError(t, err)
	assert.False(t, needed)

	require.NoError(t, os.WriteFile(logPath, []byte("longer than ten bytes"), 0644))
	needed, err = rm.NeedsRotation(logPath)
	require.NoError(t, err)
	assert.True(t, needed)

	unlimited := NewRotationManager(AuditConfig{LogDirectory: dir})
	needed, err = unlimited.NeedsRotation(logPath)
	require.NoError(t, err)
	assert.False(t, needed)
}

func TestGenerateRotatedFilename(t *testing.T) {
	rm := NewRotationManager(AuditConfig{})
	rm.now = func() time.Time {
		return time.Date(2026, 3, 4, 5, 6, 7, 89_000_000, time.UTC)
	}

	assert.Equal(t, "tagpatterns-runs-20260304-050607-089.jsonl", rm.GenerateRotatedFilename())
}

func TestRotate_UniqueNames(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, LogFileName)
	rm := NewRotationManager(AuditConfig{LogDirectory: dir})
	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rm.now = func() time.Time { return fixed }

	require.NoError(t, os.WriteFile(logPath, []byte("a\n"), 0644))
	first, err := rm.Rotate(logPath)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(logPath, []byte("b\n"), 0644))
	second, err := rm.Rotate(logPath)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, strings.HasPrefix(filepath.Base(second), segmentPrefix))
	assert.False(t, fileExists(logPath))

	segments, err := DiscoverSegments(dir)
	require.NoError(t, err)
	assert.Len(t, segments, 2)
}

func TestGetAllLogFiles_Order(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		LogFileName,
		segmentPrefix + "20260102-000000-000.jsonl",
		segmentPrefix + "20260101-000000-000.jsonl",
		"unrelated.txt",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0644))
	}

	files, err := GetAllLogFiles(dir)
	require.NoError(t, err)

	names := make([]string, len(files))
	for i, f := range files {
		names[i] = filepath.Base(f)
	}
	assert.Equal(t, []string{
		segmentPrefix + "20260101-000000-000.jsonl",
		segmentPrefix + "20260102-000000-000.jsonl",
		LogFileName,
	}, names)
}

func TestGetAllLogFiles_MissingDirectory(t *testing.T) {
	files, err := GetAllLogFiles(filepath.Join(t.TempDir(), "missing"))
	require.NoError(t, err)
	assert.Empty(t, files)
}

// TestWriterRotatesAndReaderSpansSegments verifies that runs written before
// a rotation are still listed afterwards.
func TestWriterRotatesAndReaderSpansSegments(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "runs")
	config := AuditConfig{LogDirectory: dir, RotationSize: 1}

	w, err := NewAuditWriter(config)
	require.NoError(t, err)
	first, err := w.StartRun("dev", "acme", nil)
	require.NoError(t, err)
	require.NoError(t, w.EndRun(first, RunStatusCompleted, RunSummary{TotalRows: 1}))
	require.NoError(t, w.Close())

	w, err = NewAuditWriter(config)
	require.NoError(t, err)
	second, err := w.StartRun("dev", "acme", nil)
	require.NoError(t, err)
	require.NoError(t, w.EndRun(second, RunStatusCompleted, RunSummary{TotalRows: 2}))
	require.NoError(t, w.Close())

	segments, err := DiscoverSegments(dir)
	require.NoError(t, err)
	assert.Len(t, segments, 1)

	runs, err := NewAuditReader(dir).ListRuns()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, first, runs[0].RunID)
	assert.Equal(t, second, runs[1].RunID)
}

func TestDiscoverSegments_CollisionsAfterBase(t *testing.T) {
	dir := t.TempDir()
	stamp := segmentPrefix + "20260101-000000-000"
	for _, name := range []string{
		stamp + ".10.jsonl",
		stamp + ".2.jsonl",
		stamp + ".1.jsonl",
		stamp + ".jsonl",
		segmentPrefix + "20251231-235959-999.jsonl",
		segmentPrefix + "20260101-000000-001.jsonl",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0644))
	}

	segments, err := DiscoverSegments(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		segmentPrefix + "20251231-235959-999.jsonl",
		stamp + ".jsonl",
		stamp + ".1.jsonl",
		stamp + ".2.jsonl",
		stamp + ".10.jsonl",
		segmentPrefix + "20260101-000000-001.jsonl",
	}, segments)
}

func TestRotate_CollisionIsNewestSegment(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, LogFileName)
	rm := NewRotationManager(AuditConfig{LogDirectory: dir})
	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rm.now = func() time.Time { return fixed }

	require.NoError(t, os.WriteFile(logPath, []byte("a\n"), 0644))
	_, err := rm.Rotate(logPath)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(logPath, []byte("b\n"), 0644))
	second, err := rm.Rotate(logPath)
	require.NoError(t, err)

	pruned, err := PruneSegments(dir, 1)
	require.NoError(t, err)
	require.Len(t, pruned, 1)

	segments, err := DiscoverSegments(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Base(second)}, segments)

	data, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Equal(t, "b\n", string(data))
}
