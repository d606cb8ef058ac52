package llm

import "strings"

// extractJSON pulls the JSON payload out of a model response. Models often
// wrap JSON in code fences or surround it with prose; take the outermost
// object or array and drop the rest.
func extractJSON(text string) string {
	text = strings.TrimSpace(text)

	// Prefer a fenced block when present
	if idx := strings.Index(text, "```"); idx >= 0 {
		rest := text[idx+3:]
		rest = strings.TrimPrefix(rest, "json")
		if end := strings.Index(rest, "```"); end >= 0 {
			text = strings.TrimSpace(rest[:end])
		}
	}

	start := strings.IndexAny(text, "{[")
	if start < 0 {
		return text
	}

	var closer byte
	if text[start] == '{' {
		closer = '}'
	} else {
		closer = ']'
	}
	end := strings.LastIndexByte(text, closer)
	if end <= start {
		return text[start:]
	}
	return text[start : end+1]
}
