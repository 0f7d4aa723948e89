package enrich

import (
	"encoding/json"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"github.com/nementium/agentcore/fault"
)

// decodeModelJSON decodes a JSON object out of a model response. Code fences
// are stripped first; if plain decoding fails the payload goes through the
// repair pass before giving up with a Parse fault.
func decodeModelJSON(content string, v any) error {
	content = stripCodeFence(strings.TrimSpace(content))

	if err := json.Unmarshal([]byte(content), v); err == nil {
		return nil
	}

	repaired, err := jsonrepair.JSONRepair(content)
	if err != nil {
		return fault.Wrap(err, fault.Parse, "model output is not valid JSON")
	}
	if err := json.Unmarshal([]byte(repaired), v); err != nil {
		return fault.Wrap(err, fault.Parse, "model output is not valid JSON after repair")
	}
	return nil
}

func stripCodeFence(content string) string {
	if idx := strings.Index(content, "```json"); idx >= 0 {
		content = content[idx+len("```json"):]
	} else if idx := strings.Index(content, "```"); idx >= 0 {
		content = content[idx+len("```"):]
	} else {
		return content
	}
	if end := strings.Index(content, "```"); end >= 0 {
		content = content[:end]
	}
	return strings.TrimSpace(content)
}
