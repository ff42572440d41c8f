package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// decodeInto parses raw model output into out, tolerating fenced markdown
// around the JSON body. If direct parsing fails, the largest brace-delimited
// span is tried before giving up.
func decodeInto(raw string, out any) error {
	text := stripFences(raw)
	if err := json.Unmarshal([]byte(text), out); err == nil {
		return nil
	}
	if span := braceSpan(text); span != "" {
		if err := json.Unmarshal([]byte(span), out); err == nil {
			return nil
		}
	}
	return fmt.Errorf("output is not valid JSON for target type")
}

// stripFences removes a surrounding ```json ... ``` (or bare ```) block.
func stripFences(raw string) string {
	text := strings.TrimSpace(raw)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		// Drop the language tag line ("json", "JSON", or empty).
		text = text[idx+1:]
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

// braceSpan returns the substring between the first '{' and the last '}',
// or empty when no such span exists.
func braceSpan(text string) string {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end <= start {
		return ""
	}
	return text[start : end+1]
}
