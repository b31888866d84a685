package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jasonzFong/aura-editor/pkg/memory"
)

func (s *Server) handleListMemories(c *fiber.Ctx) error {
	facts, err := s.svc.Memory.List(c.Context(), userID(c))
	if err != nil {
		return s.storeError(c, err, "memory not found", "failed to list memories")
	}
	return c.JSON(facts)
}

func (s *Server) handleCreateMemory(c *fiber.Ctx) error {
	var in memory.CreateInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "invalid request body")
	}

	fact, err := s.svc.Memory.Create(c.Context(), userID(c), in)
	if errors.Is(err, memory.ErrEmptyContent) {
		return badRequest(c, err.Error())
	}
	if err != nil {
		return s.storeError(c, err, "memory not found", "failed to create memory")
	}
	return c.Status(fiber.StatusCreated).JSON(fact)
}

func (s *Server) handleUpdateMemory(c *fiber.Ctx) error {
	var in memory.UpdateInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "invalid request body")
	}

	fact, err := s.svc.Memory.Update(c.Context(), userID(c), c.Params("id"), in)
	if err != nil {
		return s.storeError(c, err, "Memory not found", "failed to update memory")
	}
	return c.JSON(fact)
}

func (s *Server) handleDeleteMemory(c *fiber.Ctx) error {
	if err := s.svc.Memory.Delete(c.Context(), userID(c), c.Params("id")); err != nil {
		return s.storeError(c, err, "Memory not found", "failed to delete memory")
	}
	return c.JSON(fiber.Map{"message": "Memory deleted successfully"})
}
