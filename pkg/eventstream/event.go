// Package eventstream defines transport-neutral events emitted after a
// question is answered, plus the publisher interface backends implement.
package eventstream

import "time"

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeAnswerRecorded is emitted after an answer is appended to a
	// session's history.
	EventTypeAnswerRecorded = "verbatim.answer.recorded"
)

// AnswerRecordedEvent is a transport-neutral event payload for a recorded
// question/answer turn.
type AnswerRecordedEvent struct {
	SchemaVersion int              `json:"schema_version"`
	EventType     string           `json:"event_type"`
	EventID       string           `json:"event_id"`
	EmittedAt     time.Time        `json:"emitted_at"`
	SessionID     string           `json:"session_id"`
	Profile       string           `json:"profile"`
	Question      string           `json:"question"`
	Answer        string           `json:"answer"`
	Evidence      []EvidenceRecord `json:"evidence,omitempty"`
	DurationMs    int64            `json:"duration_ms"`
}

// EvidenceRecord mirrors the citation attached to an answer.
type EvidenceRecord struct {
	Quote    string `json:"quote"`
	Source   string `json:"source"`
	Page     int    `json:"page"`
	Supports string `json:"supports"`
}
