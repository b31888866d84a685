// Package sse reads and writes Server-Sent Events.
//
// The Reader decodes the streaming chat completions returned by OpenAI
// compatible providers. The Writer frames events for the analysis stream
// served to editor clients.
//
// See the SSE specification:
// https://html.spec.whatwg.org/multipage/server-sent-events.html
package sse

// Event represents a single parsed SSE event, delimited by a blank line
// in the byte stream.
type Event struct {
	// Type is the SSE event type from the "event:" field.
	// An empty string means the default "message" type per the SSE spec.
	Type string

	// Data is the concatenated contents of all "data:" lines for this event,
	// joined with "\n".
	Data string

	// ID is the last event ID from the "id:" field, if present.
	ID string
}

// Done is the data payload OpenAI compatible providers send as the final
// event of a completion stream.
const Done = "[DONE]"
