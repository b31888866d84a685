// Package oracle asks a language model which memory changes a document
// implies. Its output is untrusted: it is schema checked here, and lock and
// key rules are enforced later by memory.Service.Apply.
package oracle

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jasonzFong/aura-editor/pkg/journal"
	"github.com/jasonzFong/aura-editor/pkg/llm"
	"github.com/jasonzFong/aura-editor/pkg/memory"
)

// Request is the input of one extraction.
type Request struct {
	Text         string
	DocumentTime time.Time
	Now          time.Time
	Facts        []*journal.Fact
}

// Config configures an Extractor.
type Config struct {
	Client llm.Client
	Logger *slog.Logger
}

// Extractor turns documents into proposed memory actions.
type Extractor struct {
	client llm.Client
	logger *slog.Logger
}

// NewExtractor creates an Extractor.
func NewExtractor(cfg Config) *Extractor {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Extractor{client: cfg.Client, logger: logger}
}

// Extract returns the ordered actions proposed for req. A failed completion
// or a response that is not a JSON list returns an error and no actions.
func (e *Extractor) Extract(ctx context.Context, req Request) ([]memory.Action, error) {
	prompt, err := BuildPrompt(req)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("oracle: extraction request", "prompt_len", len(prompt), "facts", len(req.Facts))

	response, err := llm.Collect(ctx, e.client, []llm.Message{llm.User(prompt)})
	if err != nil {
		return nil, fmt.Errorf("oracle completion: %w", err)
	}
	e.logger.Debug("oracle: extraction response", "response", response)

	actions, rejected, err := ParseActions(response)
	if err != nil {
		return nil, err
	}
	for _, r := range rejected {
		e.logger.Debug("oracle: skipped proposal", "index", r.Index, "reason", r.Reason)
	}
	return actions, nil
}
