// Package llm defines the chat-completion client used by the memory oracle,
// the inline analysis stream and the almanac generator.
package llm

import (
	"context"
	"iter"
	"strings"
)

// Roles accepted in a chat Message.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a chat conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// System returns a system-role message.
func System(content string) Message { return Message{Role: RoleSystem, Content: content} }

// User returns a user-role message.
func User(content string) Message { return Message{Role: RoleUser, Content: content} }

// Assistant returns an assistant-role message.
func Assistant(content string) Message { return Message{Role: RoleAssistant, Content: content} }

// Client streams a chat completion as a sequence of text fragments.
//
// A non-nil error is yielded at most once and ends the sequence. Callers that
// stop ranging early release the underlying stream.
type Client interface {
	StreamChatCompletion(ctx context.Context, messages []Message) iter.Seq2[string, error]
}

// Collect drains a completion stream into a single string. Fragments received
// before an error are discarded.
func Collect(ctx context.Context, client Client, messages []Message) (string, error) {
	var b strings.Builder
	for chunk, err := range client.StreamChatCompletion(ctx, messages) {
		if err != nil {
			return "", err
		}
		b.WriteString(chunk)
	}
	return b.String(), nil
}
