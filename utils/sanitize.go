package utils

import (
	"strings"
	"unicode"
)

// SanitizeFilename replaces characters that are unsafe in file names with '_'
// and drops control characters. The result is trimmed and truncated to
// maxLen runes when maxLen is positive.
func SanitizeFilename(s string, maxLen int) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsControl(r) {
			continue
		}
		if isAllowedNameRune(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}

	cleaned := strings.TrimSpace(b.String())
	// Leading dots would hide the file on unix
	cleaned = strings.TrimLeft(cleaned, ".")
	if maxLen > 0 {
		runes := []rune(cleaned)
		if len(runes) > maxLen {
			cleaned = strings.TrimSpace(string(runes[:maxLen]))
		}
	}
	return cleaned
}

func isAllowedNameRune(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsDigit(r) {
		return true
	}
	switch r {
	case ' ', '-', '_', '.', ',', '(', ')', '\'', '&', '+', '#':
		return true
	default:
		return false
	}
}
