package nop

import (
	"context"

	"github.com/jasonzFong/aura-editor/pkg/eventstream"
)

// Publisher is a no-op eventstream publisher used for tests and disabled mode.
type Publisher struct{}

// NewPublisher creates a new no-op eventstream publisher.
func NewPublisher() *Publisher {
	return &Publisher{}
}

// PublishMemory validates input and otherwise does nothing.
func (p *Publisher) PublishMemory(_ context.Context, event *eventstream.MemoryEvent) error {
	if event == nil {
		return eventstream.ErrNilMemoryEvent
	}

	return nil
}

// Close is a no-op.
func (p *Publisher) Close() error {
	return nil
}
