package eventstream

import (
	"time"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeSyncCompleted is emitted after a memory sync run finishes.
	EventTypeSyncCompleted = "hiveswarm.sync.completed"
)

// SyncCompletedEvent is a transport-neutral event payload for a finished
// sync run.
type SyncCompletedEvent struct {
	SchemaVersion int         `json:"schema_version"`
	EventType     string      `json:"event_type"`
	EventID       string      `json:"event_id"`
	EmittedAt     time.Time   `json:"emitted_at"`
	Source        EventSource `json:"source"`
	Summary       SyncStats   `json:"summary"`

	// NodeIDs are the aligned node ids, highest frequency first.
	NodeIDs []string `json:"node_ids"`
}

// EventSource identifies the table a sync run read from.
type EventSource struct {
	BaseID    string `json:"base_id,omitempty"`
	TableName string `json:"table_name,omitempty"`
}

// SyncStats captures the aggregate result of a sync run.
type SyncStats struct {
	SynchronizedNodes      int       `json:"synchronized_nodes"`
	TotalSpectralFrequency float64   `json:"total_spectral_frequency"`
	UniqueResonanceThreads int       `json:"unique_resonance_threads"`
	StartedAt              time.Time `json:"started_at"`
	CompletedAt            time.Time `json:"completed_at"`
	DurationMs             int64     `json:"duration_ms"`
}
