package insight

import (
	"encoding/json"
	"strings"
)

// insightKey is the single key the remote model is asked to answer with.
const insightKey = "insight"

// ExtractInsight pulls the insight text out of a raw model reply. The
// reply may wrap the JSON object in prose; only the span from the first
// "{" to the last "}" is parsed. It reports false when no object can be
// decoded or the key does not hold a non-blank string.
func ExtractInsight(raw string) (string, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return "", false
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw[start:end+1]), &obj); err != nil {
		return "", false
	}

	field, ok := obj[insightKey]
	if !ok {
		return "", false
	}
	var text string
	if err := json.Unmarshal(field, &text); err != nil {
		return "", false
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", false
	}
	return text, true
}
