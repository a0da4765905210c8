package audit

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSegments(t *testing.T, dir string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("%s20260101-00000%d-000.jsonl", segmentPrefix, i)
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, LogFileName), nil, 0644))
}

func TestPruneSegments_KeepsNewest(t *testing.T) {
	dir := t.TempDir()
	writeSegments(t, dir, 4)

	pruned, err := PruneSegments(dir, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{
		segmentPrefix + "20260101-000000-000.jsonl",
		segmentPrefix + "20260101-000001-000.jsonl",
	}, pruned)

	segments, err := DiscoverSegments(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		segmentPrefix + "20260101-000002-000.jsonl",
		segmentPrefix + "20260101-000003-000.jsonl",
	}, segments)
	assert.True(t, fileExists(filepath.Join(dir, LogFileName)))
}

func TestPruneSegments_NothingToDo(t *testing.T) {
	dir := t.TempDir()
	writeSegments(t, dir, 2)

	pruned, err := PruneSegments(dir, 5)
	require.NoError(t, err)
	assert.Empty(t, pruned)

	pruned, err = PruneSegments(dir, 0)
	require.NoError(t, err)
	assert.Empty(t, pruned)
}

func TestRotateIfNeeded_Prunes(t *testing.T) {
	dir := t.TempDir()
	writeSegments(t, dir, 3)
	require.NoError(t, os.WriteFile(filepath.Join(dir, LogFileName), []byte("{}\n"), 0644))

	rm := NewRotationManager(AuditConfig{LogDirectory: dir, RotationSize: 1, RetainSegments: 2})
	rotated, err := rm.RotateIfNeeded(filepath.Join(dir, LogFileName))
	require.NoError(t, err)
	assert.NotEmpty(t, rotated)

	segments, err := DiscoverSegments(dir)
	require.NoError(t, err)
	assert.Len(t, segments, 2)
	assert.Equal(t, filepath.Base(rotated), segments[1])
}
