package memory

import (
	"context"
	"errors"
	"fmt"

	"github.com/jasonzFong/aura-editor/pkg/eventstream"
	"github.com/jasonzFong/aura-editor/pkg/journal"
	"github.com/jasonzFong/aura-editor/pkg/storage"
)

// Outcome reports what Apply did with an Action.
type Outcome string

const (
	OutcomeCreated   Outcome = "created"
	OutcomeUpdated   Outcome = "updated"
	OutcomeDeleted   Outcome = "deleted"
	OutcomeLocked    Outcome = "locked"
	OutcomeDiscarded Outcome = "discarded"
	OutcomeMissing   Outcome = "missing"
)

// Apply merges a scanner proposed action into the user's facts.
//
//	existing          action          effect
//	none              create/update   insert, provenance system
//	locked            any             nothing
//	unlocked          create/update   overwrite, provenance system
//	unlocked          delete          remove
//	none              delete          nothing
//
// sourceDocID is recorded on inserted and overwritten facts. Apply never
// modifies a locked fact.
func (s *Service) Apply(ctx context.Context, userID, sourceDocID string, action Action) (Outcome, error) {
	switch a := action.(type) {
	case Upsert:
		if a.Key == "" || a.Content == "" {
			return OutcomeDiscarded, nil
		}
		return s.applyUpsert(ctx, userID, sourceDocID, a)
	case Delete:
		if a.Key == "" {
			return OutcomeDiscarded, nil
		}
		return s.applyDelete(ctx, userID, a)
	default:
		return OutcomeDiscarded, nil
	}
}

func (s *Service) lookup(ctx context.Context, userID, key string) (*journal.Fact, error) {
	fact, err := s.store.GetFactByKey(ctx, userID, key)
	if storage.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("looking up fact %q: %w", key, err)
	}
	return fact, nil
}

func (s *Service) applyUpsert(ctx context.Context, userID, sourceDocID string, a Upsert) (Outcome, error) {
	existing, err := s.lookup(ctx, userID, a.Key)
	if err != nil {
		return "", err
	}
	if existing != nil && existing.Locked {
		return OutcomeLocked, nil
	}

	emoji := a.Emoji
	if emoji == "" {
		emoji = DefaultEmoji
	}
	category := a.Category
	if category == "" {
		category = DefaultCategory
	}
	confidence := a.Confidence
	if !confidence.Valid() {
		confidence = DefaultConfidence
	}
	now := s.now().UTC()

	if existing == nil {
		fact := &journal.Fact{
			UserID:           userID,
			Key:              a.Key,
			Value:            journal.FactValue{Content: a.Content, Emoji: emoji},
			Category:         category,
			Confidence:       confidence,
			UpdatedBy:        journal.ProvenanceSystem,
			SourceDocumentID: sourceDocID,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if err := s.store.CreateFact(ctx, fact); err != nil {
			if errors.Is(err, storage.ErrConflict) {
				return "", fmt.Errorf("fact %q created concurrently: %w", a.Key, err)
			}
			return "", fmt.Errorf("creating fact %q: %w", a.Key, err)
		}
		s.publish(ctx, eventstream.EventTypeMemoryCreated, journal.ProvenanceSystem, fact)
		return OutcomeCreated, nil
	}

	existing.Value = journal.FactValue{Content: a.Content, Emoji: emoji}
	existing.Category = category
	existing.Confidence = confidence
	existing.UpdatedBy = journal.ProvenanceSystem
	if sourceDocID != "" {
		existing.SourceDocumentID = sourceDocID
	}
	existing.UpdatedAt = now
	if err := s.store.UpdateFact(ctx, existing); err != nil {
		return "", fmt.Errorf("updating fact %q: %w", a.Key, err)
	}
	s.publish(ctx, eventstream.EventTypeMemoryUpdated, journal.ProvenanceSystem, existing)
	return OutcomeUpdated, nil
}

func (s *Service) applyDelete(ctx context.Context, userID string, a Delete) (Outcome, error) {
	existing, err := s.lookup(ctx, userID, a.Key)
	if err != nil {
		return "", err
	}
	if existing == nil {
		return OutcomeMissing, nil
	}
	if existing.Locked {
		return OutcomeLocked, nil
	}

	if err := s.store.DeleteFact(ctx, userID, existing.ID); err != nil {
		if storage.IsNotFound(err) {
			return OutcomeMissing, nil
		}
		return "", fmt.Errorf("deleting fact %q: %w", a.Key, err)
	}
	s.publish(ctx, eventstream.EventTypeMemoryDeleted, journal.ProvenanceSystem, existing)
	return OutcomeDeleted, nil
}
