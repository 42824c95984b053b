package utils

import "strings"

// TruncateForLog collapses whitespace runs to single spaces and shortens the
// result to limit runes, appending an ellipsis when something was cut.
func TruncateForLog(s string, limit int) string {
	if limit <= 0 {
		return ""
	}

	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

// Previews truncates every item for log output.
func Previews(items []string, limit int) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, TruncateForLog(item, limit))
	}
	return out
}
