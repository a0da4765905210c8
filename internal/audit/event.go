package audit

import (
	"encoding/json"
	"time"
)

// ISO8601Format is the time format used for audit event timestamps.
const ISO8601Format = time.RFC3339Nano

// eventJSON is the internal representation for JSON marshaling/unmarshaling.
// Optional strings are pointers so empty values are omitted.
type eventJSON struct {
	Timestamp    string            `json:"timestamp"`
	RunID        RunID             `json:"runId"`
	EventType    EventType         `json:"eventType"`
	Status       OperationStatus   `json:"status"`
	Customer     *string           `json:"customer,omitempty"`
	Location     *string           `json:"location,omitempty"`
	Tag          *string           `json:"tag,omitempty"`
	Patterns     []string          `json:"patterns,omitempty"`
	ErrorDetails *ErrorDetails     `json:"errorDetails,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// MarshalJSON implements json.Marshaler for AuditEvent.
func (e AuditEvent) MarshalJSON() ([]byte, error) {
	ej := eventJSON{
		Timestamp:    e.Timestamp.Format(ISO8601Format),
		RunID:        e.RunID,
		EventType:    e.EventType,
		Status:       e.Status,
		Patterns:     e.Patterns,
		ErrorDetails: e.ErrorDetails,
		Metadata:     e.Metadata,
	}

	if e.Customer != "" {
		ej.Customer = &e.Customer
	}
	if e.Location != "" {
		ej.Location = &e.Location
	}
	// an empty tag is meaningful for UNMATCHED_TAG
	if e.Tag != "" || e.EventType == EventUnmatchedTag {
		ej.Tag = &e.Tag
	}

	return json.Marshal(ej)
}

// UnmarshalJSON implements json.Unmarshaler for AuditEvent.
func (e *AuditEvent) UnmarshalJSON(data []byte) error {
	var ej eventJSON
	if err := json.Unmarshal(data, &ej); err != nil {
		return err
	}

	t, err := time.Parse(ISO8601Format, ej.Timestamp)
	if err != nil {
		return err
	}

	e.Timestamp = t
	e.RunID = ej.RunID
	e.EventType = ej.EventType
	e.Status = ej.Status
	e.Patterns = ej.Patterns
	e.ErrorDetails = ej.ErrorDetails
	e.Metadata = ej.Metadata

	if ej.Customer != nil {
		e.Customer = *ej.Customer
	}
	if ej.Location != nil {
		e.Location = *ej.Location
	}
	if ej.Tag != nil {
		e.Tag = *ej.Tag
	}

	return nil
}
