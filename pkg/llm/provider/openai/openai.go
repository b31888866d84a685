// Package openai streams chat completions from OpenAI compatible endpoints,
// which includes DeepSeek.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"net/http"

	"github.com/jasonzFong/aura-editor/pkg/llm"
	"github.com/jasonzFong/aura-editor/pkg/sse"
)

// Default base URLs.
const (
	OpenAIBaseURL   = "https://api.openai.com/v1"
	DeepSeekBaseURL = "https://api.deepseek.com/v1"
)

// Client implements llm.Client against a /chat/completions endpoint.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// New returns a Client. baseURL must include the API version segment,
// for example "https://api.openai.com/v1".
func New(apiKey, model, baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		apiKey:     apiKey,
		model:      model,
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []llm.Message `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// StreamChatCompletion implements llm.Client.
func (c *Client) StreamChatCompletion(ctx context.Context, messages []llm.Message) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		body, err := c.open(ctx, messages)
		if err != nil {
			yield("", err)
			return
		}
		defer body.Close()

		for ev, err := range sse.Events(body) {
			if err != nil {
				yield("", fmt.Errorf("reading stream: %w", err))
				return
			}
			if ev.Data == sse.Done {
				return
			}

			var chunk chatChunk
			if err := json.Unmarshal([]byte(ev.Data), &chunk); err != nil {
				// Keep-alive payloads from some gateways are not JSON.
				continue
			}
			if len(chunk.Choices) == 0 {
				continue
			}
			if content := chunk.Choices[0].Delta.Content; content != "" {
				if !yield(content, nil) {
					return
				}
			}
		}
	}
}

func (c *Client) open(ctx context.Context, messages []llm.Message) (io.ReadCloser, error) {
	data, err := json.Marshal(chatRequest{
		Model:    c.model,
		Messages: messages,
		Stream:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openai request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("openai API error (status %d): %s", resp.StatusCode, string(msg))
	}
	return resp.Body, nil
}
