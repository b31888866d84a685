package sse

import (
	"io"
	"strings"
)

type flusher interface {
	Flush() error
}

// Writer frames events onto an io.Writer. If the underlying writer can be
// flushed (such as a *bufio.Writer backing a streamed HTTP body) every event
// is flushed as soon as it is written.
type Writer struct {
	w io.Writer
}

// NewWriter returns a Writer that writes framed events to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteEvent writes ev followed by the blank line that terminates it.
// Multi-line data is split into one "data:" field per line.
func (w *Writer) WriteEvent(ev Event) error {
	var b strings.Builder
	if ev.Type != "" {
		b.WriteString("event: " + ev.Type + "\n")
	}
	if ev.ID != "" {
		b.WriteString("id: " + ev.ID + "\n")
	}
	for _, line := range strings.Split(ev.Data, "\n") {
		b.WriteString("data: " + line + "\n")
	}
	b.WriteString("\n")

	if _, err := io.WriteString(w.w, b.String()); err != nil {
		return err
	}
	if f, ok := w.w.(flusher); ok {
		return f.Flush()
	}
	return nil
}

// WriteData writes a default "message" event carrying data.
func (w *Writer) WriteData(data string) error {
	return w.WriteEvent(Event{Data: data})
}
