package oracle

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/jasonzFong/aura-editor/pkg/memory"
)

// ErrUnparsable is returned when the oracle response is not a JSON list.
var ErrUnparsable = errors.New("oracle response is not a JSON list")

const actionSchemaJSON = `{
  "type": "object",
  "required": ["action", "key"],
  "properties": {
    "action": {"type": "string", "enum": ["create", "update", "delete", "none"]},
    "key": {"type": "string", "minLength": 1},
    "content": {"type": "string"},
    "emoji": {"type": "string"},
    "category": {"type": "string"},
    "confidence": {"type": "string"}
  }
}`

var actionSchema = mustSchema(actionSchemaJSON)

func mustSchema(src string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("oracle: invalid action schema: %v", err))
	}
	return schema
}

type proposal struct {
	Action     string `json:"action"`
	Key        string `json:"key"`
	Content    string `json:"content"`
	Emoji      string `json:"emoji"`
	Category   string `json:"category"`
	Confidence string `json:"confidence"`
}

// Rejected describes a response item that was dropped.
type Rejected struct {
	Index  int
	Reason string
}

// StripFences removes markdown code fences around a response.
func StripFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// ParseActions decodes an oracle response into actions. Items that fail
// schema validation or carry no change are skipped and reported in rejected.
// An error is returned only when the response as a whole is not a JSON list.
func ParseActions(response string) (actions []memory.Action, rejected []Rejected, err error) {
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(StripFences(response)), &items); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrUnparsable, err)
	}

	for i, raw := range items {
		result, err := actionSchema.Validate(gojsonschema.NewBytesLoader(raw))
		if err != nil {
			rejected = append(rejected, Rejected{Index: i, Reason: err.Error()})
			continue
		}
		if !result.Valid() {
			rejected = append(rejected, Rejected{Index: i, Reason: describe(result.Errors())})
			continue
		}

		var p proposal
		if err := json.Unmarshal(raw, &p); err != nil {
			rejected = append(rejected, Rejected{Index: i, Reason: err.Error()})
			continue
		}

		switch a := memory.NewAction(p.Action, p.Key, p.Content, p.Emoji, p.Category, p.Confidence).(type) {
		case memory.None:
			rejected = append(rejected, Rejected{Index: i, Reason: a.Reason})
		default:
			actions = append(actions, a)
		}
	}
	return actions, rejected, nil
}

func describe(errs []gojsonschema.ResultError) string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, e.String())
	}
	return strings.Join(parts, "; ")
}
