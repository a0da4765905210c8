package audit

import (
	"fmt"
	"os"
	"path/filepath"
)

// PruneSegments deletes the oldest rotated segments so that at most keep
// remain. The active log is never touched. It returns the deleted file names.
func PruneSegments(logDir string, keep int) ([]string, error) {
	if keep <= 0 {
		return nil, nil
	}

	segments, err := DiscoverSegments(logDir)
	if err != nil {
		return nil, err
	}
	if len(segments) <= keep {
		return nil, nil
	}

	excess := segments[:len(segments)-keep]
	pruned := make([]string, 0, len(excess))
	for _, name := range excess {
		if err := os.Remove(filepath.Join(logDir, name)); err != nil && !os.IsNotExist(err) {
			return pruned, fmt.Errorf("failed to prune segment %s: %w", name, err)
		}
		pruned = append(pruned, name)
	}
	return pruned, nil
}
