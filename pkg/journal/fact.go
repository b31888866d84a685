package journal

import "time"

// Confidence is how sure the system is about a fact.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Valid reports whether c is one of the known confidence levels.
func (c Confidence) Valid() bool {
	switch c {
	case ConfidenceLow, ConfidenceMedium, ConfidenceHigh:
		return true
	}
	return false
}

// Rank orders confidence levels, low < medium < high. Unknown values rank 0.
func (c Confidence) Rank() int {
	switch c {
	case ConfidenceLow:
		return 1
	case ConfidenceMedium:
		return 2
	case ConfidenceHigh:
		return 3
	}
	return 0
}

// Provenance tags who last authored a fact.
type Provenance string

const (
	ProvenanceSystem Provenance = "system"
	ProvenanceUser   Provenance = "user"
)

// FactValue is the free-form payload of a fact.
type FactValue struct {
	Content string `json:"content"`
	Emoji   string `json:"emoji,omitempty"`
}

// Fact is a durable piece of knowledge about a user, unique per (UserID, Key).
// A locked fact is never mutated by automation.
type Fact struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	Key        string     `json:"key"`
	Value      FactValue  `json:"value"`
	Category   string     `json:"category"`
	Confidence Confidence `json:"confidence"`
	Locked     bool       `json:"is_locked"`
	UpdatedBy  Provenance `json:"updated_by"`

	// SourceDocumentID is the document a system fact was last derived from.
	SourceDocumentID string `json:"source_article_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
