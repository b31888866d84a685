package memory

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/jasonzFong/aura-editor/pkg/eventstream"
	"github.com/jasonzFong/aura-editor/pkg/journal"
	"github.com/jasonzFong/aura-editor/pkg/storage"
)

// ErrEmptyContent is returned when a user creates a fact without content.
var ErrEmptyContent = errors.New("memory content is required")

// maxKeyAttempts bounds the suffix search for a free key.
const maxKeyAttempts = 8

// CreateInput is a user authored fact.
type CreateInput struct {
	Content    string             `json:"content"`
	Category   string             `json:"category"`
	Confidence journal.Confidence `json:"confidence"`
	Emoji      string             `json:"emoji"`
}

// UpdateInput carries a partial update. Nil fields are left unchanged.
type UpdateInput struct {
	Locked     *bool               `json:"is_locked,omitempty"`
	Content    *string             `json:"content,omitempty"`
	Emoji      *string             `json:"emoji,omitempty"`
	Category   *string             `json:"category,omitempty"`
	Confidence *journal.Confidence `json:"confidence,omitempty"`
}

// Create stores a new user authored fact under a key generated from its
// content. A collision with an existing key never merges: the new fact gets
// the generated key plus a random "_xxxx" suffix.
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (*journal.Fact, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, ErrEmptyContent
	}

	category := in.Category
	if category == "" {
		category = UserDefaultCategory
	}
	confidence := in.Confidence
	if !confidence.Valid() {
		confidence = UserDefaultConfidence
	}
	emoji := in.Emoji
	if emoji == "" {
		emoji = DefaultEmoji
	}

	base := GenerateKey(content)
	now := s.now().UTC()
	fact := &journal.Fact{
		UserID:     userID,
		Key:        base,
		Value:      journal.FactValue{Content: content, Emoji: emoji},
		Category:   category,
		Confidence: confidence,
		UpdatedBy:  journal.ProvenanceUser,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	for range maxKeyAttempts {
		err := s.store.CreateFact(ctx, fact)
		if err == nil {
			s.publish(ctx, eventstream.EventTypeMemoryCreated, journal.ProvenanceUser, fact)
			return fact, nil
		}
		if !errors.Is(err, storage.ErrConflict) {
			return nil, fmt.Errorf("creating fact: %w", err)
		}
		fact.ID = ""
		fact.Key = base + "_" + randomHex(2)
	}
	return nil, fmt.Errorf("creating fact: no free key for %q: %w", base, storage.ErrConflict)
}

// Update applies a partial user edit. Toggling the lock does not change
// provenance. Editing content or emoji marks the fact as user authored.
// Unknown confidence values are ignored.
func (s *Service) Update(ctx context.Context, userID, id string, in UpdateInput) (*journal.Fact, error) {
	fact, err := s.store.GetFact(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if in.Locked != nil {
		fact.Locked = *in.Locked
	}
	if in.Content != nil || in.Emoji != nil {
		if in.Content != nil {
			fact.Value.Content = *in.Content
		}
		if in.Emoji != nil {
			fact.Value.Emoji = *in.Emoji
		}
		fact.UpdatedBy = journal.ProvenanceUser
	}
	if in.Category != nil {
		fact.Category = *in.Category
	}
	if in.Confidence != nil && in.Confidence.Valid() {
		fact.Confidence = *in.Confidence
	}
	fact.UpdatedAt = s.now().UTC()

	if err := s.store.UpdateFact(ctx, fact); err != nil {
		return nil, fmt.Errorf("updating fact: %w", err)
	}
	s.publish(ctx, eventstream.EventTypeMemoryUpdated, journal.ProvenanceUser, fact)
	return fact, nil
}

// Delete removes a fact regardless of its lock. Locks only restrain
// automation.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	fact, err := s.store.GetFact(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteFact(ctx, userID, id); err != nil {
		return fmt.Errorf("deleting fact: %w", err)
	}
	s.publish(ctx, eventstream.EventTypeMemoryDeleted, journal.ProvenanceUser, fact)
	return nil
}

// Recall returns the user's facts whose key, content or category contains
// query (case-insensitive), ranked by SortForContext. An empty query matches
// everything. limit <= 0 means no limit.
func (s *Service) Recall(ctx context.Context, userID, query string, limit int) ([]*journal.Fact, error) {
	facts, err := s.store.ListFacts(ctx, userID)
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(strings.TrimSpace(query))
	matched := facts[:0:0]
	for _, f := range facts {
		if q == "" ||
			strings.Contains(strings.ToLower(f.Key), q) ||
			strings.Contains(strings.ToLower(f.Value.Content), q) ||
			strings.Contains(strings.ToLower(f.Category), q) {
			matched = append(matched, f)
		}
	}

	SortForContext(matched)
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

// SortForContext orders facts by confidence (high first) and then by most
// recent update.
func SortForContext(facts []*journal.Fact) {
	slices.SortStableFunc(facts, func(a, b *journal.Fact) int {
		if c := cmp.Compare(b.Confidence.Rank(), a.Confidence.Rank()); c != 0 {
			return c
		}
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})
}
