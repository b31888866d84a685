package sse

import (
	"bufio"
	"io"
	"iter"
	"strings"
)

const maxLineSize = 1024 * 1024

// Events decodes src into a sequence of events. An event is emitted when a
// blank line closes it or when src ends with one still open. Comment lines
// and fields other than data, event and id are dropped.
//
// The sequence stops after the first read error, which is yielded with a
// zero Event.
func Events(src io.Reader) iter.Seq2[Event, error] {
	return func(yield func(Event, error) bool) {
		lines := bufio.NewScanner(src)
		lines.Buffer(make([]byte, 64*1024), maxLineSize)

		var b builder
		for lines.Scan() {
			line := lines.Text()
			switch {
			case line == "":
				if ev, ok := b.flush(); ok && !yield(ev, nil) {
					return
				}
			case strings.HasPrefix(line, ":"):
			default:
				b.field(line)
			}
		}

		if err := lines.Err(); err != nil {
			yield(Event{}, err)
			return
		}
		if ev, ok := b.flush(); ok {
			yield(ev, nil)
		}
	}
}

// builder accumulates the fields of the event being read.
type builder struct {
	ev        Event
	dataLines int
	open      bool
}

// field applies one "name: value" line. A line without a colon names a
// field with an empty value.
func (b *builder) field(line string) {
	name, value, _ := strings.Cut(line, ":")
	value = strings.TrimPrefix(value, " ")

	switch name {
	case "data":
		if b.dataLines > 0 {
			b.ev.Data += "\n"
		}
		b.ev.Data += value
		b.dataLines++
	case "event":
		b.ev.Type = value
	case "id":
		b.ev.ID = value
	default:
		return
	}
	b.open = true
}

func (b *builder) flush() (Event, bool) {
	ev, ok := b.ev, b.open
	*b = builder{}
	return ev, ok
}
