package content

import (
	"encoding/json"
	"fmt"
	"strings"
)

// stripMarkdownFences removes ```json ... ``` fences that models wrap
// around JSON output despite being asked not to.
func stripMarkdownFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// extractJSONObject returns the first top-level JSON object in s, for
// responses that surround the object with prose.
func extractJSONObject(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end < start {
		return s
	}
	return s[start : end+1]
}

// ParseJSON parses a model response into T, tolerating markdown fences
// and surrounding prose.
func ParseJSON[T any](raw string) (T, error) {
	var out T
	cleaned := extractJSONObject(stripMarkdownFences(raw))
	if err := json.Unmarshal([]byte(cleaned), &out); err != nil {
		return out, fmt.Errorf("parse model response as JSON: %w", err)
	}
	return out, nil
}
