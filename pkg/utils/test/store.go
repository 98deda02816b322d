package testutils

import (
	"context"
	"errors"
	"maps"
	"sync"

	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/airtable"
)

// ErrMockStore is returned by MockRecordStore when a failure is configured.
var ErrMockStore = errors.New("mock record store failure")

// RecordUpdate is a single call to MockRecordStore.UpdateRecord.
type RecordUpdate struct {
	ID     string
	Fields map[string]any
}

// MockRecordStore is an in-memory tabular store that records calls and
// returns configurable results.
type MockRecordStore struct {
	mu sync.Mutex

	// Records is returned by ListRecords.
	Records []airtable.Record

	// Updates accumulates all UpdateRecord calls in order.
	Updates []RecordUpdate

	// ListCalls counts ListRecords invocations.
	ListCalls int

	// FailList causes ListRecords to return ErrMockStore.
	FailList bool

	// FailUpdate causes UpdateRecord to return ErrMockStore.
	FailUpdate bool

	// ListGate, when non-nil, blocks ListRecords until it is closed.
	ListGate chan struct{}
}

// NewMockRecordStore creates a mock store holding records.
func NewMockRecordStore(records ...airtable.Record) *MockRecordStore {
	return &MockRecordStore{
		Records: records,
		Updates: make([]RecordUpdate, 0),
	}
}

// NewRecord builds a record with a Content field and optional extra fields
// given as alternating name/value pairs.
func NewRecord(id, content string, extra ...any) airtable.Record {
	fields := map[string]any{"Content": content}
	for i := 0; i+1 < len(extra); i += 2 {
		name, _ := extra[i].(string)
		fields[name] = extra[i+1]
	}
	return airtable.Record{ID: id, Fields: fields}
}

func (m *MockRecordStore) ListRecords(ctx context.Context) ([]airtable.Record, error) {
	m.mu.Lock()
	m.ListCalls++
	gate := m.ListGate
	m.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailList {
		return nil, ErrMockStore
	}

	out := make([]airtable.Record, 0, len(m.Records))
	for _, r := range m.Records {
		out = append(out, airtable.Record{ID: r.ID, Fields: maps.Clone(r.Fields), CreatedTime: r.CreatedTime})
	}
	return out, nil
}

func (m *MockRecordStore) UpdateRecord(_ context.Context, id string, fields map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailUpdate {
		return ErrMockStore
	}
	m.Updates = append(m.Updates, RecordUpdate{ID: id, Fields: maps.Clone(fields)})
	return nil
}

// UpdateFor returns the last update recorded for id.
func (m *MockRecordStore) UpdateFor(id string) (RecordUpdate, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := len(m.Updates) - 1; i >= 0; i-- {
		if m.Updates[i].ID == id {
			return m.Updates[i], true
		}
	}
	return RecordUpdate{}, false
}

// Calls returns the number of ListRecords invocations so far.
func (m *MockRecordStore) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ListCalls
}
