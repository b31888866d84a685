// Package mock provides a canned llm.Client used when no provider key is
// configured.
package mock

import (
	"context"
	"iter"
	"time"

	"github.com/jasonzFong/aura-editor/pkg/llm"
)

// DefaultChunks are streamed when no chunks are supplied.
var DefaultChunks = []string{"Thinking...", "Analyzing...", "Suggestion: This paragraph flows well!"}

// Client streams a fixed set of chunks, pausing Delay between each.
type Client struct {
	Chunks []string
	Delay  time.Duration
}

// New returns a Client streaming DefaultChunks.
func New() *Client {
	return &Client{Chunks: DefaultChunks, Delay: 500 * time.Millisecond}
}

// StreamChatCompletion implements llm.Client.
func (c *Client) StreamChatCompletion(ctx context.Context, _ []llm.Message) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for _, chunk := range c.Chunks {
			if c.Delay > 0 {
				select {
				case <-ctx.Done():
					yield("", ctx.Err())
					return
				case <-time.After(c.Delay):
				}
			}
			if !yield(chunk, nil) {
				return
			}
		}
	}
}
