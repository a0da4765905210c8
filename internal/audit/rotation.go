package audit

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

// RotationManager handles size-based rotation of the run log.
type RotationManager struct {
	config AuditConfig
	now    func() time.Time
}

// NewRotationManager creates a new RotationManager with the given configuration.
func NewRotationManager(config AuditConfig) *RotationManager {
	return &RotationManager{
		config: config,
		now:    time.Now,
	}
}

// NeedsRotation reports whether the log at logPath has reached the
// configured rotation size. A missing log never needs rotation.
func (rm *RotationManager) NeedsRotation(logPath string) (bool, error) {
	if rm.config.RotationSize <= 0 {
		return false, nil
	}

	info, err := os.Stat(logPath)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to stat log file: %w", err)
	}

	return info.Size() >= rm.config.RotationSize, nil
}

// GenerateRotatedFilename creates a filename for a rotated log segment,
// with milliseconds for uniqueness.
func (rm *RotationManager) GenerateRotatedFilename() string {
	now := rm.now()
	return fmt.Sprintf("%s%s-%03d.jsonl", segmentPrefix, now.Format("20060102-150405"), now.Nanosecond()/1000000)
}

// Rotate renames the active log to a new segment and returns its path.
func (rm *RotationManager) Rotate(logPath string) (string, error) {
	dir := filepath.Dir(logPath)
	name := rm.GenerateRotatedFilename()
	rotatedPath := filepath.Join(dir, name)

	// same millisecond as an earlier rotation
	for i := 1; fileExists(rotatedPath); i++ {
		rotatedPath = filepath.Join(dir, fmt.Sprintf("%s.%d.jsonl", strings.TrimSuffix(name, ".jsonl"), i))
	}

	if err := os.Rename(logPath, rotatedPath); err != nil {
		return "", fmt.Errorf("failed to rename log file during rotation: %w", err)
	}
	return rotatedPath, nil
}

// RotateIfNeeded rotates the log when it is over size and then prunes old
// segments. It returns the rotated path, or "" when nothing was rotated.
func (rm *RotationManager) RotateIfNeeded(logPath string) (string, error) {
	needed, err := rm.NeedsRotation(logPath)
	if err != nil || !needed {
		return "", err
	}

	rotated, err := rm.Rotate(logPath)
	if err != nil {
		return "", err
	}

	if rm.config.RetainSegments > 0 {
		if _, err := PruneSegments(filepath.Dir(logPath), rm.config.RetainSegments); err != nil {
			return rotated, err
		}
	}
	return rotated, nil
}

// DiscoverSegments finds all rotated log segments in the directory,
// oldest first. A missing directory has no segments.
func DiscoverSegments(logDir string) ([]string, error) {
	entries, err := os.ReadDir(logDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read log directory: %w", err)
	}

	var segments []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, segmentPrefix) && strings.HasSuffix(name, ".jsonl") {
			segments = append(segments, name)
		}
	}

	sort.Slice(segments, func(i, j int) bool {
		si, ni := segmentOrder(segments[i])
		sj, nj := segmentOrder(segments[j])
		if si != sj {
			return si < sj
		}
		return ni < nj
	})

	return segments, nil
}

// segmentOrder splits a segment name into its fixed-width timestamp and the
// collision sequence Rotate appends (0 for the first segment of a stamp).
func segmentOrder(name string) (string, int) {
	base := strings.TrimSuffix(strings.TrimPrefix(name, segmentPrefix), ".jsonl")
	stamp, seq, found := strings.Cut(base, ".")
	if !found {
		return base, 0
	}
	n, err := strconv.Atoi(seq)
	if err != nil {
		return base, 0
	}
	return stamp, n
}

// GetAllLogFiles returns all log files in chronological order (oldest first),
// rotated segments followed by the active log.
func GetAllLogFiles(logDir string) ([]string, error) {
	segments, err := DiscoverSegments(logDir)
	if err != nil {
		return nil, err
	}

	files := make([]string, 0, len(segments)+1)
	for _, seg := range segments {
		files = append(files, filepath.Join(logDir, seg))
	}

	activeLog := filepath.Join(logDir, LogFileName)
	if fileExists(activeLog) {
		files = append(files, activeLog)
	}

	return files, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
