// Package mcp provides an MCP (Model Context Protocol) server exposing a
// user's memories to MCP clients.
package mcp

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/jasonzFong/aura-editor/pkg/journal"
	"github.com/jasonzFong/aura-editor/pkg/utils"
)

// UserHeader carries the caller's user id on MCP requests.
const UserHeader = "X-User-ID"

// Recaller searches a user's memories.
type Recaller interface {
	Recall(ctx context.Context, userID, query string, limit int) ([]*journal.Fact, error)
}

type Config struct {
	// Memory answers memory_recall calls.
	Memory Recaller

	// Noop for empty MCP server
	Noop bool

	Logger *slog.Logger
}

type Server struct {
	config  Config
	handler *mcp.StreamableHTTPHandler
}

// NewServer creates a new MCP server with the memory_recall tool.
func NewServer(c Config) (*Server, error) {
	if !c.Noop && c.Memory == nil {
		return nil, errors.New("memory service is required")
	}
	if c.Logger == nil {
		return nil, errors.New("logger is required")
	}

	s := &Server{config: c}

	// Each stateless request gets a server bound to its caller.
	s.handler = mcp.NewStreamableHTTPHandler(
		func(r *http.Request) *mcp.Server {
			return s.ServerFor(r.Header.Get(UserHeader))
		},
		&mcp.StreamableHTTPOptions{
			Stateless: true,
		},
	)

	return s, nil
}

// ServerFor returns an MCP server whose tools act on userID's data.
func (s *Server) ServerFor(userID string) *mcp.Server {
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "aura",
			Version: utils.Version,
		},
		&mcp.ServerOptions{},
	)

	if s.config.Noop {
		return mcpServer
	}

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        memoryRecallToolName,
		Description: memoryRecallDescription,
	}, s.memoryRecallHandler(userID))

	return mcpServer
}

// Handler returns the HTTP handler for the MCP server.
func (s *Server) Handler() http.Handler {
	return s.handler
}
