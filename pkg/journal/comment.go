package journal

import "time"

// Comment statuses.
const (
	CommentActive   = "active"
	CommentResolved = "resolved"
)

// Reply roles in a comment thread.
const (
	RoleUser = "user"
	RoleAI   = "ai"
)

// Comment is an AI-authored inline remark on a document, with a reply thread.
type Comment struct {
	ID         string       `json:"id"`
	DocumentID string       `json:"article_id"`
	UserID     string       `json:"user_id"`
	Quote      string       `json:"quote,omitempty"`
	Range      *TextRange   `json:"range,omitempty"`
	Content    string       `json:"content"`
	Type       string       `json:"type"`
	Status     string       `json:"status"`
	Replies    []ReplyEntry `json:"reply"`
	CreatedAt  time.Time    `json:"created_at"`
}

// TextRange locates the quoted span in the document.
type TextRange struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// ReplyEntry is one message in a comment thread.
type ReplyEntry struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Almanac is the cached almanac for a single calendar date.
type Almanac struct {
	Date      string    `json:"date"`
	Yi        []string  `json:"yi"`
	Ji        []string  `json:"ji"`
	Icon      string    `json:"icon"`
	CreatedAt time.Time `json:"created_at"`
}
