package oracle

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/jasonzFong/aura-editor/pkg/journal"
	"github.com/jasonzFong/aura-editor/pkg/utils"
)

// MaxTextRunes is the longest document text sent to the oracle.
const MaxTextRunes = 20000

//go:embed prompt.tmpl
var promptSource string

var promptTemplate = template.Must(template.New("extract").Parse(promptSource))

// contextFact is how an existing fact is shown to the oracle.
type contextFact struct {
	Key        string             `json:"key"`
	Content    string             `json:"content"`
	UpdatedAt  string             `json:"updated_at"`
	IsLocked   bool               `json:"is_locked"`
	Confidence journal.Confidence `json:"confidence"`
}

type promptData struct {
	Now          string
	DocumentTime string
	Memories     string
	Text         string
}

// BuildPrompt renders the extraction prompt for req.
func BuildPrompt(req Request) (string, error) {
	facts := make([]contextFact, 0, len(req.Facts))
	for _, f := range req.Facts {
		facts = append(facts, contextFact{
			Key:        f.Key,
			Content:    f.Value.Content,
			UpdatedAt:  formatTime(f.UpdatedAt),
			IsLocked:   f.Locked,
			Confidence: f.Confidence,
		})
	}
	memories, err := json.MarshalIndent(facts, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding memory context: %w", err)
	}

	docTime := req.DocumentTime
	if docTime.IsZero() {
		docTime = req.Now
	}

	var b strings.Builder
	err = promptTemplate.Execute(&b, promptData{
		Now:          formatTime(req.Now),
		DocumentTime: formatTime(docTime),
		Memories:     string(memories),
		Text:         utils.TruncateRunes(req.Text, MaxTextRunes),
	})
	if err != nil {
		return "", fmt.Errorf("rendering prompt: %w", err)
	}
	return b.String(), nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
