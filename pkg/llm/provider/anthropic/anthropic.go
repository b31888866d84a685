// Package anthropic streams chat completions through the Anthropic SDK.
package anthropic

import (
	"context"
	"iter"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/jasonzFong/aura-editor/pkg/llm"
)

// DefaultMaxTokens bounds a single completion.
const DefaultMaxTokens = 4096

// Client implements llm.Client with the Messages streaming API.
type Client struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

// New returns a Client. An empty baseURL uses the SDK default.
func New(apiKey, model, baseURL string, opts ...option.RequestOption) *Client {
	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(baseURL))
	}
	reqOpts = append(reqOpts, opts...)

	return &Client{
		client:    anthropic.NewClient(reqOpts...),
		model:     model,
		maxTokens: DefaultMaxTokens,
	}
}

// StreamChatCompletion implements llm.Client. System messages are joined into
// the request's system prompt.
func (c *Client) StreamChatCompletion(ctx context.Context, messages []llm.Message) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		stream := c.client.Messages.NewStreaming(ctx, c.params(messages))
		defer stream.Close()

		for stream.Next() {
			event := stream.Current()
			evt, ok := event.AsAny().(anthropic.ContentBlockDeltaEvent)
			if !ok {
				continue
			}
			if delta, ok := evt.Delta.AsAny().(anthropic.TextDelta); ok && delta.Text != "" {
				if !yield(delta.Text, nil) {
					return
				}
			}
		}
		if err := stream.Err(); err != nil {
			yield("", err)
		}
	}
}

func (c *Client) params(messages []llm.Message) anthropic.MessageNewParams {
	var system []string
	turns := make([]anthropic.MessageParam, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case llm.RoleSystem:
			system = append(system, m.Content)
		case llm.RoleAssistant:
			turns = append(turns, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			turns = append(turns, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages:  turns,
	}
	if len(system) > 0 {
		params.System = []anthropic.TextBlockParam{{Text: strings.Join(system, "\n\n")}}
	}
	return params
}
