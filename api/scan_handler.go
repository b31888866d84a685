package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jasonzFong/aura-editor/pkg/worker"
)

// handleScan queues a manual memory scan for the caller. The scan itself
// runs in the background worker pool.
func (s *Server) handleScan(c *fiber.Ctx) error {
	if s.svc.Scans == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{Error: "scanner disabled"})
	}

	if !s.svc.Scans.Enqueue(worker.Job{UserID: userID(c), Trigger: worker.TriggerManual}) {
		return c.Status(fiber.StatusConflict).JSON(ErrorResponse{Error: "scan already queued"})
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": "queued"})
}
