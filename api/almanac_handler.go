package api

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jasonzFong/aura-editor/pkg/almanac"
)

// handleGetAlmanac returns the almanac for :date, or today without one.
// Any failure answers 404 so clients can hide the widget.
func (s *Server) handleGetAlmanac(c *fiber.Ctx) error {
	if s.svc.Almanac == nil {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "Almanac not available"})
	}

	date := c.Params("date")
	if date == "" {
		date = time.Now().Format(almanac.DateLayout)
	}
	if _, err := time.Parse(almanac.DateLayout, date); err != nil {
		return badRequest(c, "date must be YYYY-MM-DD")
	}

	day, err := s.svc.Almanac.GetDate(c.Context(), date)
	if err != nil {
		s.logger.Warn("almanac unavailable", "date", date, "error", err)
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "Almanac not available"})
	}
	return c.JSON(day)
}
