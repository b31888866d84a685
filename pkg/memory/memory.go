// Package memory owns every mutation of a user's facts.
//
// Two writers exist. The background scanner proposes Actions which are merged
// through Service.Apply under the lock and provenance rules, and users edit
// facts directly through Create, Update and Delete. Each successful mutation
// is published to the configured eventstream.Publisher.
package memory

import (
	"context"
	"log/slog"
	"time"

	"github.com/jasonzFong/aura-editor/pkg/eventstream"
	"github.com/jasonzFong/aura-editor/pkg/eventstream/nop"
	"github.com/jasonzFong/aura-editor/pkg/journal"
	"github.com/jasonzFong/aura-editor/pkg/storage"
)

// Default values applied to facts proposed by the scanner.
const (
	DefaultEmoji      = "📝"
	DefaultCategory   = "knowledge"
	DefaultConfidence = journal.ConfidenceMedium
)

// Defaults for facts created by users.
const (
	UserDefaultCategory   = "Knowledge"
	UserDefaultConfidence = journal.ConfidenceLow
)

// Config configures a Service.
type Config struct {
	Store     storage.FactStore
	Publisher eventstream.Publisher
	Logger    *slog.Logger

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// Service applies fact mutations.
type Service struct {
	store     storage.FactStore
	publisher eventstream.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

// NewService creates a Service.
func NewService(cfg Config) *Service {
	s := &Service{
		store:     cfg.Store,
		publisher: cfg.Publisher,
		logger:    cfg.Logger,
		now:       cfg.Now,
	}
	if s.publisher == nil {
		s.publisher = nop.NewPublisher()
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// List returns all of a user's facts ordered by key.
func (s *Service) List(ctx context.Context, userID string) ([]*journal.Fact, error) {
	return s.store.ListFacts(ctx, userID)
}

// publish emits an event for a mutation. Publishing failures are logged and
// never fail the mutation, which has already been committed.
func (s *Service) publish(ctx context.Context, eventType string, actor journal.Provenance, fact *journal.Fact) {
	event := eventstream.NewMemoryEvent(eventType, actor, fact, s.now())
	if err := s.publisher.PublishMemory(ctx, event); err != nil {
		s.logger.Warn("memory: failed to publish event",
			"event_type", eventType,
			"user_id", fact.UserID,
			"key", fact.Key,
			"error", err,
		)
	}
}
