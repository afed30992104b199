package util

import (
	"regexp"
	"strings"
)

// Matches anything tag-shaped, attributes included.
var tagPattern = regexp.MustCompile(`<[^>]*>`)

// SanitizeInput strips tag-like substrings from a form field, truncates it to
// maxLen characters and trims surrounding whitespace. Applied independently
// per field with per-field maximum lengths.
func SanitizeInput(s string, maxLen int) string {
	s = tagPattern.ReplaceAllString(s, "")
	if runes := []rune(s); len(runes) > maxLen {
		s = string(runes[:maxLen])
	}
	return strings.TrimSpace(s)
}
