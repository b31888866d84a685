package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jasonzFong/aura-editor/pkg/comments"
)

// ReplyRequest is the body of a comment reply.
type ReplyRequest struct {
	Content string `json:"content"`
}

// handleCreateComment stores a comment. The oracle's "no comment" answer is
// acknowledged without storing anything.
func (s *Server) handleCreateComment(c *fiber.Ctx) error {
	var in comments.CreateInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "invalid request body")
	}
	if in.DocumentID == "" {
		return badRequest(c, "article_id is required")
	}

	comment, err := s.svc.Comments.Create(c.Context(), userID(c), in)
	if errors.Is(err, comments.ErrNoComment) {
		return c.JSON(fiber.Map{"status": "skipped", "reason": "no_comment"})
	}
	if err != nil {
		return s.storeError(c, err, "Comment not found", "failed to create comment")
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

func (s *Server) handleListComments(c *fiber.Ctx) error {
	list, err := s.svc.Comments.List(c.Context(), userID(c), c.Params("id"))
	if err != nil {
		return s.storeError(c, err, "Article not found", "failed to list comments")
	}
	return c.JSON(list)
}

func (s *Server) handleResolveComment(c *fiber.Ctx) error {
	if err := s.svc.Comments.Resolve(c.Context(), userID(c), c.Params("id")); err != nil {
		return s.storeError(c, err, "Comment not found", "failed to resolve comment")
	}
	return c.JSON(fiber.Map{"status": "resolved"})
}

// handleReplyComment appends the user's reply and waits for the AI answer.
// An AI failure still answers 200 with the saved_user_reply_only status.
func (s *Server) handleReplyComment(c *fiber.Ctx) error {
	var req ReplyRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	result, err := s.svc.Comments.Reply(c.Context(), userID(c), c.Params("id"), req.Content)
	if errors.Is(err, comments.ErrEmptyReply) {
		return badRequest(c, err.Error())
	}
	if err != nil {
		return s.storeError(c, err, "Comment not found", "failed to save reply")
	}
	return c.JSON(result)
}
