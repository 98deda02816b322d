package nop

import (
	"context"

	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/eventstream"
)

// Publisher is a no-op eventstream publisher used for tests and disabled mode.
type Publisher struct{}

// NewPublisher creates a new no-op eventstream publisher.
func NewPublisher() *Publisher {
	return &Publisher{}
}

// PublishSync validates input and otherwise does nothing.
func (p *Publisher) PublishSync(_ context.Context, event *eventstream.SyncCompletedEvent) error {
	if event == nil {
		return eventstream.ErrNilSyncEvent
	}

	return nil
}

// Close is a no-op.
func (p *Publisher) Close() error {
	return nil
}
