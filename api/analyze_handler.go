package api

import (
	"context"
	"errors"
	"io"
	"iter"

	"github.com/gofiber/fiber/v2"

	"github.com/jasonzFong/aura-editor/pkg/analysis"
	"github.com/jasonzFong/aura-editor/pkg/sse"
)

// Stream event types.
const (
	eventError = "error"
	eventDone  = "done"
)

// handleAnalyzeStream streams the inline comment for a passage as
// server-sent events: one data event per oracle chunk, then a "done" event.
// An oracle failure mid-stream ends it with an "error" event.
func (s *Server) handleAnalyzeStream(c *fiber.Ctx) error {
	var req analysis.Request
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	// The stream outlives the handler, so it cannot use the request context.
	ctx, cancel := context.WithCancel(context.Background())

	chunks, err := s.svc.Analysis.Analyze(ctx, userID(c), req)
	if errors.Is(err, analysis.ErrEmptyText) {
		cancel()
		return badRequest(c, err.Error())
	}
	if err != nil {
		cancel()
		s.logger.Error("analysis failed", "user_id", userID(c), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "analysis failed"})
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")

	// io.Pipe gives per-chunk flushing through fasthttp's chunked writer.
	pr, pw := io.Pipe()
	go s.pipeAnalysis(cancel, chunks, pw)
	c.Context().Response.SetBodyStream(pr, -1)

	return nil
}

func (s *Server) pipeAnalysis(cancel context.CancelFunc, chunks iter.Seq2[string, error], pw *io.PipeWriter) {
	defer cancel()
	defer pw.Close()

	w := sse.NewWriter(pw)
	for chunk, err := range chunks {
		if err != nil {
			s.logger.Warn("analysis stream failed", "error", err)
			_ = w.WriteEvent(sse.Event{Type: eventError, Data: err.Error()})
			return
		}
		if err := w.WriteData(chunk); err != nil {
			// Client went away.
			return
		}
	}
	_ = w.WriteEvent(sse.Event{Type: eventDone})
}
