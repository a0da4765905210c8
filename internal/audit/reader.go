package audit

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"
)

// ErrRunNotFound is returned when no events exist for a run ID.
var ErrRunNotFound = errors.New("run not found")

// EventFilter defines criteria for filtering audit events.
type EventFilter struct {
	EventTypes []EventType // Filter by event types (empty = all types)
	Location   string      // Filter by location (empty = all)
	StartTime  *time.Time  // Filter events after this time
	EndTime    *time.Time  // Filter events before this time
}

// AuditReader reads and parses events from the run log.
type AuditReader struct {
	logDir string
}

// NewAuditReader creates a new AuditReader for the given log directory.
func NewAuditReader(logDir string) *AuditReader {
	return &AuditReader{
		logDir: logDir,
	}
}

// ListRuns returns all runs with summary information, oldest first.
func (r *AuditReader) ListRuns() ([]RunInfo, error) {
	events, err := r.readAllEvents()
	if err != nil {
		return nil, fmt.Errorf("failed to read events: %w", err)
	}

	return r.extractRunInfos(events), nil
}

// GetRun returns all events for a specific run.
func (r *AuditReader) GetRun(runID RunID) ([]AuditEvent, error) {
	events, err := r.readAllEvents()
	if err != nil {
		return nil, fmt.Errorf("failed to read events: %w", err)
	}

	var runEvents []AuditEvent
	for _, event := range events {
		if event.RunID == runID {
			runEvents = append(runEvents, event)
		}
	}

	if len(runEvents) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}

	return runEvents, nil
}

// GetLatestRun returns the most recent run by start timestamp.
func (r *AuditReader) GetLatestRun() (*RunInfo, error) {
	runs, err := r.ListRuns()
	if err != nil {
		return nil, err
	}

	if len(runs) == 0 {
		return nil, ErrRunNotFound
	}

	return &runs[len(runs)-1], nil
}

// FilterEvents returns events matching the filter criteria for a specific run.
func (r *AuditReader) FilterEvents(runID RunID, filter EventFilter) ([]AuditEvent, error) {
	events, err := r.GetRun(runID)
	if err != nil {
		return nil, err
	}

	var filtered []AuditEvent
	for _, event := range events {
		if matchesFilter(event, filter) {
			filtered = append(filtered, event)
		}
	}
	return filtered, nil
}

func matchesFilter(event AuditEvent, filter EventFilter) bool {
	if len(filter.EventTypes) > 0 {
		found := false
		for _, et := range filter.EventTypes {
			if event.EventType == et {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if filter.Location != "" && event.Location != filter.Location {
		return false
	}
	if filter.StartTime != nil && event.Timestamp.Before(*filter.StartTime) {
		return false
	}
	if filter.EndTime != nil && event.Timestamp.After(*filter.EndTime) {
		return false
	}
	return true
}

// readAllEvents reads every event in the rotated segments and the active
// log, oldest first. A missing log yields no events.
func (r *AuditReader) readAllEvents() ([]AuditEvent, error) {
	files, err := GetAllLogFiles(r.logDir)
	if err != nil {
		return nil, err
	}

	var events []AuditEvent
	for _, path := range files {
		fileEvents, err := readLogFile(path)
		if err != nil {
			return nil, err
		}
		events = append(events, fileEvents...)
	}
	return events, nil
}

func readLogFile(path string) ([]AuditEvent, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	var events []AuditEvent
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var event AuditEvent
		if err := event.UnmarshalJSON(line); err != nil {
			return nil, fmt.Errorf("%s line %d: %w", filepath.Base(path), lineNum, err)
		}
		events = append(events, event)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return events, nil
}

// extractRunInfos groups events by run and builds one RunInfo per run.
func (r *AuditReader) extractRunInfos(events []AuditEvent) []RunInfo {
	byRun := make(map[RunID][]AuditEvent)
	var order []RunID
	for _, event := range events {
		if event.RunID == "" {
			continue
		}
		if _, seen := byRun[event.RunID]; !seen {
			order = append(order, event.RunID)
		}
		byRun[event.RunID] = append(byRun[event.RunID], event)
	}

	infos := make([]RunInfo, 0, len(order))
	for _, id := range order {
		infos = append(infos, buildRunInfo(id, byRun[id]))
	}

	sort.SliceStable(infos, func(i, j int) bool {
		return infos[i].StartTime.Before(infos[j].StartTime)
	})
	return infos
}

func buildRunInfo(runID RunID, events []AuditEvent) RunInfo {
	info := RunInfo{
		RunID:  runID,
		Status: RunStatusInProgress,
	}

	for _, event := range events {
		switch event.EventType {
		case EventRunStart:
			info.StartTime = event.Timestamp
			info.Customer = event.Customer
			info.AppVersion = event.Metadata["appVersion"]
		case EventRunEnd:
			end := event.Timestamp
			info.EndTime = &end
			info.Status = RunStatus(event.Metadata["status"])
			info.Summary = parseSummaryFromMetadata(event.Metadata)
		}
	}

	return info
}

func parseSummaryFromMetadata(metadata map[string]string) RunSummary {
	atoi := func(key string) int {
		n, _ := strconv.Atoi(metadata[key])
		return n
	}
	return RunSummary{
		TotalRows:        atoi("totalRows"),
		UnmatchedStart:   atoi("unmatchedStart"),
		UnmatchedEnd:     atoi("unmatchedEnd"),
		StartingPatterns: atoi("startingPatterns"),
		EndingPatterns:   atoi("endingPatterns"),
	}
}

// GetLogDirectory returns the directory being read.
func (r *AuditReader) GetLogDirectory() string {
	return r.logDir
}
