package audit

import (
	"bufio"
	"crypto/rand"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// AuditWriter handles all write operations to the run log.
// It implements append-only semantics with fail-fast behavior.
type AuditWriter struct {
	mu         sync.Mutex
	file       *os.File
	writer     *bufio.Writer
	logPath    string
	currentRun *RunID
	entropy    *ulid.MonotonicEntropy
}

// NewAuditWriter creates the log directory if needed and opens the run log
// for appending, rotating it first when it has reached the configured size.
// A new log starts with a LOG_INITIALIZED event.
func NewAuditWriter(config AuditConfig) (*AuditWriter, error) {
	if err := os.MkdirAll(config.LogDirectory, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	logPath := filepath.Join(config.LogDirectory, LogFileName)

	rotated, err := NewRotationManager(config).RotateIfNeeded(logPath)
	if err != nil {
		return nil, fmt.Errorf("failed to rotate run log: %w", err)
	}
	if rotated != "" {
		slog.Debug("rotated run log", "segment", rotated)
	}

	isNewLog := false
	if _, err := os.Stat(logPath); os.IsNotExist(err) {
		isNewLog = true
	}

	file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open run log: %w", err)
	}

	w := &AuditWriter{
		file:    file,
		writer:  bufio.NewWriter(file),
		logPath: logPath,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}

	if isNewLog {
		event := AuditEvent{
			Timestamp: time.Now().UTC(),
			EventType: EventLogInitialized,
			Status:    StatusSuccess,
		}
		if err := w.writeEventLocked(event); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to write LOG_INITIALIZED event: %w", err)
		}
	}

	return w, nil
}

// LogPath returns the path of the log file being written.
func (w *AuditWriter) LogPath() string {
	return w.logPath
}

// StartRun generates a Run ID and writes the RUN_START event.
func (w *AuditWriter) StartRun(appVersion string, customer string, metadata map[string]string) (RunID, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	id, err := ulid.New(ulid.Now(), w.entropy)
	if err != nil {
		return "", fmt.Errorf("failed to generate run ID: %w", err)
	}
	runID := RunID(id.String())

	md := map[string]string{"appVersion": appVersion}
	for k, v := range metadata {
		md[k] = v
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		RunID:     runID,
		EventType: EventRunStart,
		Status:    StatusSuccess,
		Customer:  customer,
		Metadata:  md,
	}
	if err := w.writeEventLocked(event); err != nil {
		return "", fmt.Errorf("failed to write RUN_START event: %w", err)
	}

	w.currentRun = &runID
	return runID, nil
}

// RecordPatterns writes the catalog discovered for one location.
func (w *AuditWriter) RecordPatterns(runID RunID, location string, threshold float64, catalog []string) error {
	return w.WriteEvent(AuditEvent{
		Timestamp: time.Now().UTC(),
		RunID:     runID,
		EventType: EventPatternsDiscovered,
		Status:    StatusSuccess,
		Location:  location,
		Patterns:  catalog,
		Metadata: map[string]string{
			"threshold": strconv.FormatFloat(threshold, 'g', -1, 64),
			"count":     strconv.Itoa(len(catalog)),
		},
	})
}

// RecordUnmatched writes an UNMATCHED_TAG event for a row without a pattern.
func (w *AuditWriter) RecordUnmatched(runID RunID, location string, row int, tag string) error {
	return w.WriteEvent(AuditEvent{
		Timestamp: time.Now().UTC(),
		RunID:     runID,
		EventType: EventUnmatchedTag,
		Status:    StatusSkipped,
		Location:  location,
		Tag:       tag,
		Metadata:  map[string]string{"row": strconv.Itoa(row)},
	})
}

// RecordError writes an ERROR event for a failed operation.
func (w *AuditWriter) RecordError(runID RunID, operation string, err error) error {
	return w.WriteEvent(AuditEvent{
		Timestamp: time.Now().UTC(),
		RunID:     runID,
		EventType: EventError,
		Status:    StatusFailure,
		ErrorDetails: &ErrorDetails{
			ErrorType:    fmt.Sprintf("%T", err),
			ErrorMessage: err.Error(),
			Operation:    operation,
		},
	})
}

// WriteEvent writes a single audit event to the log.
// It fails fast if the write cannot be completed.
func (w *AuditWriter) WriteEvent(event AuditEvent) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.writeEventLocked(event)
}

// writeEventLocked appends the event as one JSON line and syncs the file.
func (w *AuditWriter) writeEventLocked(event AuditEvent) error {
	data, err := event.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if _, err := w.writer.Write(data); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}
	if err := w.writer.WriteByte('\n'); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}
	if err := w.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush event: %w", err)
	}
	if err := w.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync event to disk: %w", err)
	}

	return nil
}

// EndRun records the run completion status and summary.
func (w *AuditWriter) EndRun(runID RunID, status RunStatus, summary RunSummary) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	opStatus := StatusSuccess
	if status == RunStatusFailed {
		opStatus = StatusFailure
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		RunID:     runID,
		EventType: EventRunEnd,
		Status:    opStatus,
		Metadata: map[string]string{
			"status":           string(status),
			"totalRows":        strconv.Itoa(summary.TotalRows),
			"unmatchedStart":   strconv.Itoa(summary.UnmatchedStart),
			"unmatchedEnd":     strconv.Itoa(summary.UnmatchedEnd),
			"startingPatterns": strconv.Itoa(summary.StartingPatterns),
			"endingPatterns":   strconv.Itoa(summary.EndingPatterns),
		},
	}

	if err := w.writeEventLocked(event); err != nil {
		return fmt.Errorf("failed to write RUN_END event: %w", err)
	}

	w.currentRun = nil
	return nil
}

// CurrentRun returns the active run ID, if any.
func (w *AuditWriter) CurrentRun() *RunID {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.currentRun
}

// Close flushes and closes the log file.
func (w *AuditWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.writer.Flush(); err != nil {
		w.file.Close()
		return fmt.Errorf("failed to flush run log: %w", err)
	}
	return w.file.Close()
}
