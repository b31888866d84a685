package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jasonzFong/aura-editor/api/mcp"
	"github.com/jasonzFong/aura-editor/pkg/storage"
)

const userIDLocal = "user_id"

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// requireUser rejects requests without a caller id and stores it for the
// handlers.
func (s *Server) requireUser(c *fiber.Ctx) error {
	id := c.Get(mcp.UserHeader)
	if id == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{Error: mcp.UserHeader + " header required"})
	}
	c.Locals(userIDLocal, id)
	return c.Next()
}

func userID(c *fiber.Ctx) string {
	id, _ := c.Locals(userIDLocal).(string)
	return id
}

// storeError maps a service error to a response. Not found errors become
// 404 with notFound as the message.
func (s *Server) storeError(c *fiber.Ctx, err error, notFound, failed string) error {
	switch {
	case storage.IsNotFound(err):
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: notFound})
	case errors.Is(err, storage.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(ErrorResponse{Error: err.Error()})
	}
	s.logger.Error(failed, "user_id", userID(c), "path", c.Path(), "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: failed})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: msg})
}
