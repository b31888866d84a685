package memory

import "github.com/jasonzFong/aura-editor/pkg/journal"

// Verb is the operation an oracle proposes for a fact.
type Verb string

const (
	VerbCreate Verb = "create"
	VerbUpdate Verb = "update"
	VerbDelete Verb = "delete"
)

// Action is a proposed change to a single fact. It is one of Upsert, Delete
// or None.
type Action interface {
	isAction()
}

// Upsert creates the fact named by Key, or overwrites it when it exists and
// is unlocked. Create and update proposals share this variant and Verb
// records which one was proposed.
type Upsert struct {
	Verb       Verb
	Key        string
	Content    string
	Emoji      string
	Category   string
	Confidence journal.Confidence
}

// Delete removes the fact named by Key when it exists and is unlocked.
type Delete struct {
	Key string
}

// None is a proposal that was recognised but carries no change, such as an
// item with a missing key or an unknown verb.
type None struct {
	Reason string
}

func (Upsert) isAction() {}
func (Delete) isAction() {}
func (None) isAction()   {}

// NewAction builds an Action from loosely typed oracle output. Items without
// a verb or key, and unknown verbs, become None.
func NewAction(verb, key, content, emoji, category, confidence string) Action {
	if verb == "" || key == "" {
		return None{Reason: "missing action or key"}
	}
	switch Verb(verb) {
	case VerbCreate, VerbUpdate:
		return Upsert{
			Verb:       Verb(verb),
			Key:        key,
			Content:    content,
			Emoji:      emoji,
			Category:   category,
			Confidence: journal.Confidence(confidence),
		}
	case VerbDelete:
		return Delete{Key: key}
	default:
		return None{Reason: "unrecognized action " + verb}
	}
}
