package llm

import "strings"

// StripFences extracts the body of the first markdown code fence in a
// model response, or returns the trimmed input when there is none.
func StripFences(s string) string {
	start := strings.Index(s, "```")
	if start < 0 {
		return strings.TrimSpace(s)
	}
	body := s[start+3:]
	// Drop a language tag line like "json" or "python".
	if nl := strings.Index(body, "\n"); nl >= 0 && isLangTag(strings.TrimSpace(body[:nl])) {
		body = body[nl+1:]
	}
	end := strings.Index(body, "```")
	if end >= 0 {
		body = body[:end]
	}
	return strings.TrimSpace(body)
}

func isLangTag(s string) bool {
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}
