package util

import (
	"html"
	"regexp"
	"strings"
	"unicode"
)

var (
	htmlTagPattern     = regexp.MustCompile(`(?s)<[^>]*>`)
	scriptBlockPattern = regexp.MustCompile(`(?is)<script\b.*?(?:</script\s*>|$)`)
	styleBlockPattern  = regexp.MustCompile(`(?is)<style\b.*?(?:</style\s*>|$)`)
)

// SanitizeText strips markup from free-text input before it reaches
// storage: script and style blocks are removed with their contents,
// remaining tags are dropped, entities are decoded once, and control
// or invisible characters are filtered out.
func SanitizeText(raw string) string {
	cleaned := strings.ReplaceAll(raw, "\x00", "")
	cleaned = scriptBlockPattern.ReplaceAllString(cleaned, "")
	cleaned = styleBlockPattern.ReplaceAllString(cleaned, "")
	cleaned = htmlTagPattern.ReplaceAllString(cleaned, "")
	cleaned = html.UnescapeString(cleaned)

	builder := strings.Builder{}
	builder.Grow(len(cleaned))
	for _, char := range cleaned {
		if char != '\n' && char != '\t' && (unicode.IsControl(char) || unicode.Is(unicode.Cf, char)) {
			continue
		}
		builder.WriteRune(char)
	}

	return strings.TrimSpace(builder.String())
}
