// Package comments manages the AI comments attached to documents and their
// reply threads.
package comments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jasonzFong/aura-editor/pkg/analysis"
	"github.com/jasonzFong/aura-editor/pkg/journal"
	"github.com/jasonzFong/aura-editor/pkg/storage"
)

var (
	// ErrNoComment is returned by Create when the content is the oracle's
	// "no comment" answer. Nothing is stored.
	ErrNoComment = errors.New("no comment")

	ErrEmptyReply = errors.New("reply content is empty")
)

// DefaultType is the comment type used when none is given.
const DefaultType = "suggestion"

// Reply statuses.
const (
	StatusReplied            = "replied"
	StatusSavedUserReplyOnly = "saved_user_reply_only"
)

// Replier produces the AI answer for a comment thread.
type Replier interface {
	ReplyText(ctx context.Context, userID string, comment *journal.Comment) (string, error)
}

// Config configures a Service.
type Config struct {
	Store   storage.CommentStore
	Replier Replier
	Logger  *slog.Logger

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// Service manages comments.
type Service struct {
	store   storage.CommentStore
	replier Replier
	logger  *slog.Logger
	now     func() time.Time
}

// NewService creates a Service.
func NewService(cfg Config) *Service {
	s := &Service{store: cfg.Store, replier: cfg.Replier, logger: cfg.Logger, now: cfg.Now}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// CreateInput is a new comment.
type CreateInput struct {
	DocumentID string             `json:"article_id"`
	Content    string             `json:"content"`
	Quote      string             `json:"quote,omitempty"`
	Range      *journal.TextRange `json:"range,omitempty"`
	Type       string             `json:"type,omitempty"`
}

// Create stores an active comment.
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (*journal.Comment, error) {
	if analysis.IsNoComment(in.Content) {
		return nil, ErrNoComment
	}
	if in.DocumentID == "" {
		return nil, errors.New("comment requires a document id")
	}

	kind := in.Type
	if kind == "" {
		kind = DefaultType
	}

	c := &journal.Comment{
		DocumentID: in.DocumentID,
		UserID:     userID,
		Quote:      in.Quote,
		Range:      in.Range,
		Content:    in.Content,
		Type:       kind,
		Status:     journal.CommentActive,
		Replies:    []journal.ReplyEntry{},
		CreatedAt:  s.now().UTC(),
	}
	if err := s.store.PutComment(ctx, c); err != nil {
		return nil, fmt.Errorf("creating comment: %w", err)
	}
	return c, nil
}

// List returns a user's comments on a document, newest first.
func (s *Service) List(ctx context.Context, userID, documentID string) ([]*journal.Comment, error) {
	return s.store.ListComments(ctx, userID, documentID)
}

// Resolve marks a comment resolved.
func (s *Service) Resolve(ctx context.Context, userID, id string) error {
	c, err := s.store.GetComment(ctx, userID, id)
	if err != nil {
		return err
	}
	c.Status = journal.CommentResolved
	if err := s.store.PutComment(ctx, c); err != nil {
		return fmt.Errorf("resolving comment: %w", err)
	}
	return nil
}

// ReplyResult is the outcome of Reply.
type ReplyResult struct {
	Status     string               `json:"status"`
	AIResponse string               `json:"ai_response,omitempty"`
	Error      string               `json:"error,omitempty"`
	Replies    []journal.ReplyEntry `json:"reply_list"`
}

// Reply appends the user's message to the thread and asks the oracle to
// answer. The user message is persisted before the oracle is called, so an
// oracle failure still returns a result with StatusSavedUserReplyOnly.
func (s *Service) Reply(ctx context.Context, userID, id, content string) (*ReplyResult, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyReply
	}

	c, err := s.store.GetComment(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	c.Replies = append(c.Replies, journal.ReplyEntry{
		Role:      journal.RoleUser,
		Content:   content,
		Timestamp: s.now().UTC(),
	})
	if err := s.store.PutComment(ctx, c); err != nil {
		return nil, fmt.Errorf("saving reply: %w", err)
	}

	answer, err := s.replier.ReplyText(ctx, userID, c)
	if err != nil {
		s.logger.Warn("comments: reply generation failed",
			"user_id", userID,
			"comment_id", id,
			"error", err,
		)
		return &ReplyResult{
			Status:  StatusSavedUserReplyOnly,
			Error:   err.Error(),
			Replies: c.Replies,
		}, nil
	}

	c.Replies = append(c.Replies, journal.ReplyEntry{
		Role:      journal.RoleAI,
		Content:   answer,
		Timestamp: s.now().UTC(),
	})
	if err := s.store.PutComment(ctx, c); err != nil {
		return nil, fmt.Errorf("saving ai reply: %w", err)
	}

	return &ReplyResult{
		Status:     StatusReplied,
		AIResponse: answer,
		Replies:    c.Replies,
	}, nil
}
