package notes

import (
	"regexp"
	"strings"
	"time"
)

// disallowedRegex matches any rune that may not appear in a note filename.
var disallowedRegex = regexp.MustCompile(`[^A-Za-z0-9_.\- ]`)

// whitespaceRegex matches one or more whitespace characters
var whitespaceRegex = regexp.MustCompile(`\s+`)

// UntitledTitle is used when a title sanitizes to nothing.
const UntitledTitle = "untitled"

// SanitizeTitle maps arbitrary user text to a filesystem-safe, non-empty note title:
// 1. Trim leading/trailing whitespace
// 2. Replace every rune outside [A-Za-z0-9_.- ] with "_"
// 3. Collapse runs of whitespace to a single "_"
// 4. Fall back to "untitled" when nothing is left
//
// The result contains no whitespace and no path separators, so applying
// SanitizeTitle again returns it unchanged.
func SanitizeTitle(raw string) string {
	s := strings.TrimSpace(raw)
	s = disallowedRegex.ReplaceAllString(s, "_")
	s = whitespaceRegex.ReplaceAllString(s, "_")
	if s == "" {
		return UntitledTitle
	}
	return s
}

// DefaultTitle returns the title used by "notes new" without an argument.
// Granularity is one second; two calls in the same second yield the same title.
func DefaultTitle(now time.Time) string {
	return "Note " + now.Format("2006-01-02 15.04.05")
}
