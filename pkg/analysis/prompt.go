package analysis

import (
	"fmt"
	"strings"
	"time"

	"github.com/jasonzFong/aura-editor/pkg/journal"
	"github.com/jasonzFong/aura-editor/pkg/llm"
	"github.com/jasonzFong/aura-editor/pkg/memory"
)

const analyzeInstructions = `You are a writing companion leaving margin notes on the user's text.
Reply in the language the text is written in.

Leave at most ONE note. Pick the passage that most needs improving, or a passage that is especially vivid or well written and deserves a short word of encouragement. The user should come away feeling the note was useful or fun.
If the writer sounds sad, lighten the mood with a gentle joke. If they sound lonely, keep them warm company. Never preach or lecture.
If nothing deserves a note, or the text is meaningless (random letters, bare punctuation, too short to judge), output >> NO_COMMENT.

Use exactly this format:
>> QUOTE: <exact substring of the text>
>> COMMENT: <your note>
For a note about the text as a whole, write >> QUOTE: NONE.
When no note is needed, output exactly:
>> NO_COMMENT
Do not add markdown to these markers and do not leave more than one note.`

const alreadyCommentedHeader = `These passages already carry a note. Do not comment on them again:`

const analyzeMemoryHeader = `What we know about the user, most certain first. Weave it in naturally when relevant ("since you like short sentences...") and never say you remember or were told:`

const replyInstructions = `Earlier you left a note (a suggestion, some encouragement or a joke) on a passage of the user's writing, and now the user is answering it.
Continue the conversation from that note: help them improve the passage if it was a suggestion, and keep the warm tone going if it was encouragement or a joke.
If the user moves on to another topic, follow them and stop bringing up the original note.
Be concise and encouraging, and answer in the language of the user's latest message.`

const replyMemoryHeader = `Keep the user's preferences in mind and refer to them naturally, never saying you remember or were told:`

const replyAcknowledgement = "Understood. I'm ready to discuss this note."

// AnalyzeMessages builds the conversation for an inline analysis. facts may
// be nil.
func AnalyzeMessages(req Request, facts []*journal.Fact) []llm.Message {
	var sys strings.Builder
	sys.WriteString(analyzeInstructions)

	if quotes := nonBlank(req.ExistingQuotes); len(quotes) > 0 {
		sys.WriteString("\n\n")
		sys.WriteString(alreadyCommentedHeader)
		for _, q := range quotes {
			sys.WriteString("\n- ")
			sys.WriteString(q)
		}
	}

	if len(facts) > 0 {
		sorted := append([]*journal.Fact(nil), facts...)
		memory.SortForContext(sorted)

		sys.WriteString("\n\n")
		sys.WriteString(analyzeMemoryHeader)
		for _, f := range sorted {
			fmt.Fprintf(&sys, "\n- %s: %s (confidence: %s, updated: %s)",
				f.Key, f.Value.Content, f.Confidence, f.UpdatedAt.UTC().Format(time.RFC3339))
		}
	}

	return []llm.Message{
		llm.System(sys.String()),
		llm.User(fmt.Sprintf("Context: %s\n\nText: %s", req.Context, req.Text)),
	}
}

// ReplyMessages builds the conversation for answering a comment thread.
// Thread entries by the AI become assistant messages.
func ReplyMessages(comment *journal.Comment, facts []*journal.Fact) []llm.Message {
	var sys strings.Builder
	sys.WriteString(replyInstructions)

	if len(facts) > 0 {
		sys.WriteString("\n\n")
		sys.WriteString(replyMemoryHeader)
		for _, f := range facts {
			fmt.Fprintf(&sys, "\n- %s: %s", f.Key, f.Value.Content)
		}
	}

	context := fmt.Sprintf("Context:\nQuoted text: %q\nYour note: %q\n\n(The conversation follows.)",
		comment.Quote, comment.Content)

	messages := make([]llm.Message, 0, len(comment.Replies)+3)
	messages = append(messages,
		llm.System(sys.String()),
		llm.User(context),
		llm.Assistant(replyAcknowledgement),
	)
	for _, entry := range comment.Replies {
		if entry.Role == journal.RoleUser {
			messages = append(messages, llm.User(entry.Content))
		} else {
			messages = append(messages, llm.Assistant(entry.Content))
		}
	}
	return messages
}

func nonBlank(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
