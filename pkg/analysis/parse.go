package analysis

import "strings"

// Markers of the inline comment format.
const (
	NoComment     = "NO_COMMENT"
	markerPrefix  = ">>"
	quoteMarker   = "QUOTE:"
	commentMarker = "COMMENT:"
	generalQuote  = "NONE"
)

// Comment is a parsed inline comment.
type Comment struct {
	// Quote is the commented passage. Empty for a general comment.
	Quote string
	Body  string
}

// IsNoComment reports whether text is the explicit "no comment" answer,
// with or without the marker prefix.
func IsNoComment(text string) bool {
	t := strings.TrimSpace(text)
	t = strings.TrimSpace(strings.TrimPrefix(t, markerPrefix))
	return t == NoComment
}

// ParseComment parses a ">> QUOTE: ... / >> COMMENT: ..." reply. The comment
// body runs to the end of the text. ok is false for NO_COMMENT or when no
// comment body is present.
func ParseComment(text string) (c Comment, ok bool) {
	if IsNoComment(text) {
		return Comment{}, false
	}

	var (
		body      []string
		inComment bool
	)
	for line := range strings.Lines(text) {
		trimmed := strings.TrimSpace(line)
		marker := strings.TrimSpace(strings.TrimPrefix(trimmed, markerPrefix))
		isMarker := strings.HasPrefix(trimmed, markerPrefix)

		switch {
		case isMarker && strings.HasPrefix(marker, quoteMarker):
			c.Quote = strings.TrimSpace(strings.TrimPrefix(marker, quoteMarker))
			inComment = false
		case isMarker && strings.HasPrefix(marker, commentMarker):
			body = append(body[:0], strings.TrimSpace(strings.TrimPrefix(marker, commentMarker)))
			inComment = true
		case isMarker && marker == NoComment:
			return Comment{}, false
		case inComment:
			body = append(body, strings.TrimRight(line, "\r\n"))
		}
	}

	if c.Quote == generalQuote {
		c.Quote = ""
	}
	c.Body = strings.TrimSpace(strings.Join(body, "\n"))
	return c, c.Body != ""
}
