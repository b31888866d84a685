// Package textextract flattens editor document trees into plain text.
package textextract

import (
	"encoding/json"
	"strings"
)

// node is one element of a rich-text document tree.
type node struct {
	Type    string `json:"type"`
	Text    string `json:"text"`
	Content []node `json:"content"`
}

// Extract returns the text of a document tree by depth-first traversal: a
// node's own text when its type is "text", then the text of each child
// followed by a newline. Empty content and malformed trees yield "".
func Extract(content json.RawMessage) string {
	if len(content) == 0 {
		return ""
	}

	var root node
	if err := json.Unmarshal(content, &root); err != nil {
		return ""
	}

	var b strings.Builder
	walk(&b, root)
	return b.String()
}

func walk(b *strings.Builder, n node) {
	if n.Type == "text" {
		b.WriteString(n.Text)
	}

	for _, child := range n.Content {
		walk(b, child)
		b.WriteByte('\n')
	}
}
