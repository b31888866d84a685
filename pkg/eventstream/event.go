package eventstream

import (
	"time"

	"github.com/google/uuid"

	"github.com/jasonzFong/aura-editor/pkg/journal"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	EventTypeMemoryCreated = "aura.memory.created"
	EventTypeMemoryUpdated = "aura.memory.updated"
	EventTypeMemoryDeleted = "aura.memory.deleted"
)

// MemoryEvent is a transport-neutral payload emitted after a fact mutation.
type MemoryEvent struct {
	SchemaVersion int       `json:"schema_version"`
	EventType     string    `json:"event_type"`
	EventID       string    `json:"event_id"`
	EmittedAt     time.Time `json:"emitted_at"`

	UserID string `json:"user_id"`

	// Actor is who caused the mutation: system for the scanner, user for
	// API and CLI edits.
	Actor journal.Provenance `json:"actor"`

	// Fact is the state after the mutation, or the removed fact for deletes.
	Fact journal.Fact `json:"fact"`
}

// NewMemoryEvent builds a MemoryEvent with a fresh id.
func NewMemoryEvent(eventType string, actor journal.Provenance, fact *journal.Fact, at time.Time) *MemoryEvent {
	return &MemoryEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     eventType,
		EventID:       uuid.NewString(),
		EmittedAt:     at.UTC(),
		UserID:        fact.UserID,
		Actor:         actor,
		Fact:          *fact,
	}
}
