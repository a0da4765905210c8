// Package audit records an append-only log of pattern discovery runs.
// Each run writes a RUN_START event, one PATTERNS_DISCOVERED event per
// location, an UNMATCHED_TAG event per row left without a pattern, and a
// closing RUN_END event.
package audit

import "time"

// RunID is a unique, time-sortable identifier for each run (a ULID).
type RunID string

// EventType represents the type of audit event.
type EventType string

const (
	// Run lifecycle events
	EventRunStart EventType = "RUN_START"
	EventRunEnd   EventType = "RUN_END"

	// Pipeline events
	EventPatternsDiscovered EventType = "PATTERNS_DISCOVERED"
	EventUnmatchedTag       EventType = "UNMATCHED_TAG"
	EventError              EventType = "ERROR"

	// System events
	EventLogInitialized EventType = "LOG_INITIALIZED"
)

// OperationStatus represents the outcome of an operation.
type OperationStatus string

const (
	StatusSuccess OperationStatus = "SUCCESS"
	StatusFailure OperationStatus = "FAILURE"
	StatusSkipped OperationStatus = "SKIPPED"
)

// RunStatus represents the status of a run.
type RunStatus string

const (
	RunStatusInProgress RunStatus = "IN_PROGRESS"
	RunStatusCompleted  RunStatus = "COMPLETED"
	RunStatusFailed     RunStatus = "FAILED"
)

// ErrorDetails contains detailed information about an error.
type ErrorDetails struct {
	ErrorType    string `json:"errorType"`
	ErrorMessage string `json:"errorMessage"`
	Operation    string `json:"operation"`
}

// AuditEvent represents a single audit record.
type AuditEvent struct {
	Timestamp    time.Time         `json:"timestamp"`              // ISO 8601 format
	RunID        RunID             `json:"runId"`                  // Run identifier
	EventType    EventType         `json:"eventType"`              // Type of event
	Status       OperationStatus   `json:"status"`                 // Operation outcome
	Customer     string            `json:"customer,omitempty"`     // Customer the run analysed
	Location     string            `json:"location,omitempty"`     // discovery.PrefixName or discovery.SuffixName
	Tag          string            `json:"tag,omitempty"`          // Tag for per-row events
	Patterns     []string          `json:"patterns,omitempty"`     // Catalog for discovery events
	ErrorDetails *ErrorDetails     `json:"errorDetails,omitempty"` // Error information
	Metadata     map[string]string `json:"metadata,omitempty"`     // Additional metadata
}

// RunSummary contains statistics for a completed run.
type RunSummary struct {
	TotalRows        int `json:"totalRows"`
	UnmatchedStart   int `json:"unmatchedStart"`
	UnmatchedEnd     int `json:"unmatchedEnd"`
	StartingPatterns int `json:"startingPatterns"`
	EndingPatterns   int `json:"endingPatterns"`
}

// RunInfo contains metadata and summary for a run.
type RunInfo struct {
	RunID      RunID      `json:"runId"`
	StartTime  time.Time  `json:"startTime"`
	EndTime    *time.Time `json:"endTime,omitempty"`
	Status     RunStatus  `json:"status"`
	AppVersion string     `json:"appVersion"`
	Customer   string     `json:"customer"`
	Summary    RunSummary `json:"summary"`
}

// AuditConfig holds configuration for the run log.
type AuditConfig struct {
	Disabled       bool   `json:"disabled,omitempty" yaml:"disabled,omitempty"`
	LogDirectory   string `json:"log_directory" yaml:"log_directory"`
	RotationSize   int64  `json:"rotation_size_bytes,omitempty" yaml:"rotation_size_bytes,omitempty"` // Rotate the active log once it reaches this size (0 = never)
	RetainSegments int    `json:"retain_segments,omitempty" yaml:"retain_segments,omitempty"`         // Rotated segments to keep (0 = all)
}

// LogFileName is the name of the active run log inside LogDirectory.
// Rotated segments are named tagpatterns-runs-YYYYMMDD-HHMMSS-NNN.jsonl.
const LogFileName = "tagpatterns-runs.jsonl"

const segmentPrefix = "tagpatterns-runs-"

// DefaultAuditConfig returns an AuditConfig with sensible defaults.
func DefaultAuditConfig() AuditConfig {
	return AuditConfig{
		LogDirectory: ".tagpatterns/runs",
	}
}
