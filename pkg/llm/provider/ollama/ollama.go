// Package ollama streams chat completions from a local Ollama server.
package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"net/http"

	"github.com/jasonzFong/aura-editor/pkg/llm"
)

// DefaultBaseURL is where Ollama listens by default.
const DefaultBaseURL = "http://localhost:11434"

// Client implements llm.Client against Ollama's /api/chat endpoint.
type Client struct {
	model      string
	baseURL    string
	httpClient *http.Client
}

// New returns a Client.
func New(model, baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{model: model, baseURL: baseURL, httpClient: httpClient}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []llm.Message `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatResponse struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
	Done  bool   `json:"done"`
	Error string `json:"error,omitempty"`
}

// StreamChatCompletion implements llm.Client. Ollama streams newline
// delimited JSON objects rather than SSE.
func (c *Client) StreamChatCompletion(ctx context.Context, messages []llm.Message) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		data, err := json.Marshal(chatRequest{Model: c.model, Messages: messages, Stream: true})
		if err != nil {
			yield("", fmt.Errorf("marshal request: %w", err))
			return
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(data))
		if err != nil {
			yield("", fmt.Errorf("create request: %w", err))
			return
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			yield("", fmt.Errorf("ollama request: %w", err))
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			yield("", fmt.Errorf("ollama API error (status %d): %s", resp.StatusCode, string(msg)))
			return
		}

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := scanner.Bytes()
			if len(bytes.TrimSpace(line)) == 0 {
				continue
			}

			var chunk chatResponse
			if err := json.Unmarshal(line, &chunk); err != nil {
				yield("", fmt.Errorf("unmarshal chunk: %w", err))
				return
			}
			if chunk.Error != "" {
				yield("", fmt.Errorf("ollama error: %s", chunk.Error))
				return
			}
			if chunk.Message.Content != "" {
				if !yield(chunk.Message.Content, nil) {
					return
				}
			}
			if chunk.Done {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			yield("", fmt.Errorf("reading stream: %w", err))
		}
	}
}
