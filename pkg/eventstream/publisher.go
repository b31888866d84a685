// Package eventstream publishes fact mutation events to downstream
// consumers. The nop publisher is the default; kafka is opt-in.
package eventstream

import "context"

// Publisher publishes memory events to an event stream backend.
type Publisher interface {
	PublishMemory(ctx context.Context, event *MemoryEvent) error
	Close() error
}
