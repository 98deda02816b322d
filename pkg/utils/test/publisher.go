package testutils

import (
	"context"
	"errors"
	"sync"

	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/eventstream"
)

// ErrMockPublish is returned by MockPublisher when Fail is set.
var ErrMockPublish = errors.New("mock publish failure")

// MockPublisher records published sync events.
type MockPublisher struct {
	mu sync.Mutex

	Events []*eventstream.SyncCompletedEvent
	Fail   bool
	Closed bool
}

// NewMockPublisher creates an empty mock publisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) PublishSync(_ context.Context, event *eventstream.SyncCompletedEvent) error {
	if event == nil {
		return eventstream.ErrNilSyncEvent
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Fail {
		return ErrMockPublish
	}
	m.Events = append(m.Events, event)
	return nil
}

func (m *MockPublisher) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
	return nil
}

// Published returns a snapshot of the recorded events.
func (m *MockPublisher) Published() []*eventstream.SyncCompletedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*eventstream.SyncCompletedEvent, len(m.Events))
	copy(out, m.Events)
	return out
}
