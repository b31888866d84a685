// Package analysis produces the inline AI comments on a document and the
// AI side of comment threads.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"strings"

	"github.com/jasonzFong/aura-editor/pkg/journal"
	"github.com/jasonzFong/aura-editor/pkg/llm"
)

// ErrEmptyText is returned when there is nothing to analyze.
var ErrEmptyText = errors.New("text is empty")

// Request is an inline analysis request.
type Request struct {
	Text    string `json:"text"`
	Context string `json:"context"`

	// ExistingQuotes are passages that already carry a comment.
	ExistingQuotes []string `json:"existing_quotes"`
}

// FactLister lists a user's facts.
type FactLister interface {
	List(ctx context.Context, userID string) ([]*journal.Fact, error)
}

// Config configures a Service.
type Config struct {
	Client llm.Client

	// Facts supplies memory context. Optional.
	Facts  FactLister
	Logger *slog.Logger
}

// Service streams analyses and thread replies.
type Service struct {
	client llm.Client
	facts  FactLister
	logger *slog.Logger
}

// NewService creates a Service.
func NewService(cfg Config) *Service {
	s := &Service{client: cfg.Client, facts: cfg.Facts, logger: cfg.Logger}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	return s
}

// Analyze streams the oracle's inline comment for the request.
func (s *Service) Analyze(ctx context.Context, userID string, req Request) (iter.Seq2[string, error], error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, ErrEmptyText
	}
	facts := s.memories(ctx, userID)
	return s.client.StreamChatCompletion(ctx, AnalyzeMessages(req, facts)), nil
}

// Reply streams the AI answer to the latest message of a comment thread.
func (s *Service) Reply(ctx context.Context, userID string, comment *journal.Comment) iter.Seq2[string, error] {
	facts := s.memories(ctx, userID)
	return s.client.StreamChatCompletion(ctx, ReplyMessages(comment, facts))
}

// ReplyText collects Reply into a single string.
func (s *Service) ReplyText(ctx context.Context, userID string, comment *journal.Comment) (string, error) {
	var b strings.Builder
	for chunk, err := range s.Reply(ctx, userID, comment) {
		if err != nil {
			return "", fmt.Errorf("streaming reply: %w", err)
		}
		b.WriteString(chunk)
	}
	return b.String(), nil
}

// memories loads memory context. Failures degrade to no context.
func (s *Service) memories(ctx context.Context, userID string) []*journal.Fact {
	if s.facts == nil || userID == "" {
		return nil
	}
	facts, err := s.facts.List(ctx, userID)
	if err != nil {
		s.logger.Warn("analysis: loading memories failed", "user_id", userID, "error", err)
		return nil
	}
	return facts
}
