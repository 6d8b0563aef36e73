package scraper

import "strings"

// SplitPart returns the idx-th segment of s around sep, trimmed. It returns
// the empty string when the separator does not yield that many segments, so
// callers can feed the result straight into an optional raw field.
func SplitPart(s, sep string, idx int) string {
	parts := strings.Split(s, sep)
	if idx >= len(parts) {
		return ""
	}
	return strings.TrimSpace(parts[idx])
}
