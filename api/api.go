package api

import (
	"errors"
	"log/slog"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"

	"github.com/jasonzFong/aura-editor/api/mcp"
	"github.com/jasonzFong/aura-editor/pkg/almanac"
	"github.com/jasonzFong/aura-editor/pkg/analysis"
	"github.com/jasonzFong/aura-editor/pkg/comments"
	"github.com/jasonzFong/aura-editor/pkg/memory"
	"github.com/jasonzFong/aura-editor/pkg/storage"
	"github.com/jasonzFong/aura-editor/pkg/worker"
)

// ScanQueue accepts manual scan requests.
type ScanQueue interface {
	Enqueue(job worker.Job) bool
}

// Services are the domain services the API exposes. Almanac, Scans and MCP
// are optional; their routes answer as unavailable when nil.
type Services struct {
	Users    storage.UserStore
	Memory   *memory.Service
	Comments *comments.Service
	Analysis *analysis.Service
	Almanac  *almanac.Service
	Scans    ScanQueue
	MCP      *mcp.Server
}

// Server is the API server for the aura system
type Server struct {
	config Config
	svc    Services
	logger *slog.Logger
	app    *fiber.App
}

// NewServer creates a new API server.
// The services are injected so they can be shared with the scheduler and
// the worker pool running in the same process.
func NewServer(config Config, svc Services, logger *slog.Logger) (*Server, error) {
	switch {
	case svc.Users == nil:
		return nil, errors.New("user store is required")
	case svc.Memory == nil:
		return nil, errors.New("memory service is required")
	case svc.Comments == nil:
		return nil, errors.New("comments service is required")
	case svc.Analysis == nil:
		return nil, errors.New("analysis service is required")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config: config,
		svc:    svc,
		logger: logger,
		app:    app,
	}

	app.Get("/ping", s.handlePing)

	if svc.MCP != nil {
		app.All("/mcp", adaptor.HTTPHandler(svc.MCP.Handler()))
	}

	v1 := app.Group("/api/v1", s.requireUser)

	v1.Get("/memories", s.handleListMemories)
	v1.Post("/memories", s.handleCreateMemory)
	v1.Put("/memories/:id", s.handleUpdateMemory)
	v1.Delete("/memories/:id", s.handleDeleteMemory)

	v1.Post("/comments", s.handleCreateComment)
	v1.Get("/comments/article/:id", s.handleListComments)
	v1.Put("/comments/:id/resolve", s.handleResolveComment)
	v1.Post("/comments/:id/reply", s.handleReplyComment)

	v1.Get("/user/settings", s.handleGetSettings)
	v1.Put("/user/settings", s.handleUpdateSettings)

	v1.Post("/scan", s.handleScan)

	v1.Get("/almanac", s.handleGetAlmanac)
	v1.Get("/almanac/:date", s.handleGetAlmanac)

	v1.Post("/ai/analyze/stream", s.handleAnalyzeStream)

	return s, nil
}

// App exposes the underlying fiber app, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server", "listen", s.config.ListenAddr)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
