package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/jasonzFong/aura-editor/pkg/journal"
)

var (
	memoryRecallToolName    = "memory_recall"
	memoryRecallDescription = "Recall what aura knows about the user: durable facts and preferences extracted from their writing or added by them. Optionally filter by a query matched against key, content and category. Results are ordered by confidence, then recency."
)

const defaultRecallLimit = 20

// MemoryRecallInput represents the input arguments for the MCP memory_recall tool.
type MemoryRecallInput struct {
	Query string `json:"query,omitempty" jsonschema:"text to match against memory key, content and category; empty returns everything"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of memories to return (default: 20)"`
}

// MemoryRecallOutput represents the structured output of a memory recall.
type MemoryRecallOutput struct {
	Facts []*journal.Fact `json:"facts"`
	Count int             `json:"count"`
}

// emptyRecall is the structured output sent alongside error results. Facts
// must be a non-nil slice: the SDK validates it against the tool's output
// schema, which requires an array.
func emptyRecall() MemoryRecallOutput {
	return MemoryRecallOutput{Facts: []*journal.Fact{}}
}

func errorResult(format string, args ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf(format, args...)},
		},
	}
}

// memoryRecallHandler processes memory recall requests for one user.
func (s *Server) memoryRecallHandler(userID string) mcp.ToolHandlerFor[MemoryRecallInput, MemoryRecallOutput] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input MemoryRecallInput) (*mcp.CallToolResult, MemoryRecallOutput, error) {
		if userID == "" {
			return errorResult("%s header is required", UserHeader), emptyRecall(), nil
		}

		limit := input.Limit
		if limit <= 0 {
			limit = defaultRecallLimit
		}

		s.config.Logger.Debug("MCP memory recall",
			"user_id", userID,
			"query", input.Query,
			"limit", limit,
		)

		facts, err := s.config.Memory.Recall(ctx, userID, input.Query, limit)
		if err != nil {
			s.config.Logger.Error("memory recall failed", "user_id", userID, "error", err)
			return errorResult("Memory recall failed: %v", err), emptyRecall(), nil
		}

		if facts == nil {
			facts = []*journal.Fact{}
		}

		output := MemoryRecallOutput{Facts: facts, Count: len(facts)}

		jsonBytes, err := json.Marshal(output)
		if err != nil {
			return errorResult("Failed to serialize results: %v", err), emptyRecall(), nil
		}

		return &mcp.CallToolResult{
			Content: []mcp.Content{
				&mcp.TextContent{Text: string(jsonBytes)},
			},
		}, output, nil
	}
}
