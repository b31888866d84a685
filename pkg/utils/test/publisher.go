package testutils

import (
	"context"
	"sync"

	"github.com/jasonzFong/aura-editor/pkg/eventstream"
)

// RecordingPublisher is an eventstream.Publisher that keeps every event.
type RecordingPublisher struct {
	mu     sync.Mutex
	events []*eventstream.MemoryEvent

	// Err is returned from PublishMemory when set.
	Err error
}

// NewRecordingPublisher creates an empty RecordingPublisher.
func NewRecordingPublisher() *RecordingPublisher {
	return &RecordingPublisher{}
}

func (p *RecordingPublisher) PublishMemory(_ context.Context, event *eventstream.MemoryEvent) error {
	if event == nil {
		return eventstream.ErrNilMemoryEvent
	}
	if p.Err != nil {
		return p.Err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *RecordingPublisher) Close() error {
	return nil
}

// Events returns the published events in order.
func (p *RecordingPublisher) Events() []*eventstream.MemoryEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*eventstream.MemoryEvent, len(p.events))
	copy(out, p.events)
	return out
}

// EventTypes returns the event types in publish order.
func (p *RecordingPublisher) EventTypes() []string {
	var out []string
	for _, e := range p.Events() {
		out = append(out, e.EventType)
	}
	return out
}
