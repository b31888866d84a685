// Package testutils holds shared test doubles.
package testutils

import (
	"context"
	"iter"
	"sync"

	"github.com/jasonzFong/aura-editor/pkg/llm"
)

// MockLLM is an llm.Client that streams configured replies and records every
// call.
type MockLLM struct {
	mu sync.Mutex

	// Replies are returned in order, one per call. The last reply repeats
	// once the list is exhausted.
	Replies []string

	// Err, when set, is yielded after any reply text.
	Err error

	// PanicWith makes StreamChatCompletion panic with the value.
	PanicWith any

	// OnCall runs at the start of every call.
	OnCall func(messages []llm.Message)

	calls [][]llm.Message
}

// NewMockLLM creates a MockLLM returning replies in order.
func NewMockLLM(replies ...string) *MockLLM {
	return &MockLLM{Replies: replies}
}

// StreamChatCompletion implements llm.Client. Each reply is streamed in two
// fragments split at a rune boundary.
func (m *MockLLM) StreamChatCompletion(_ context.Context, messages []llm.Message) iter.Seq2[string, error] {
	m.mu.Lock()
	idx := len(m.calls)
	m.calls = append(m.calls, messages)
	var reply string
	if len(m.Replies) > 0 {
		reply = m.Replies[min(idx, len(m.Replies)-1)]
	}
	err := m.Err
	onCall := m.OnCall
	panicWith := m.PanicWith
	m.mu.Unlock()

	if onCall != nil {
		onCall(messages)
	}
	if panicWith != nil {
		panic(panicWith)
	}

	return func(yield func(string, error) bool) {
		runes := []rune(reply)
		half := len(runes) / 2
		for _, part := range []string{string(runes[:half]), string(runes[half:])} {
			if part == "" {
				continue
			}
			if !yield(part, nil) {
				return
			}
		}
		if err != nil {
			yield("", err)
		}
	}
}

// Calls returns the messages of every call so far.
func (m *MockLLM) Calls() [][]llm.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]llm.Message, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns the number of calls so far.
func (m *MockLLM) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}
