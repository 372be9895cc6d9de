package speech

import (
	"regexp"
	"strings"
)

// DefaultMaxChars bounds the text sent in one synthesis request
const DefaultMaxChars = 2000

var (
	headingPattern  = regexp.MustCompile(`(?m)^#.*$`)
	bulletPattern   = regexp.MustCompile(`(?m)^\s*[-*]\s*`)
	blankRunPattern = regexp.MustCompile(`\n\n+`)
)

// CleanText strips markdown headings and bullet markers from a script,
// normalizes blank lines and truncates the result to maxChars runes.
func CleanText(content string, maxChars int) string {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}

	text := headingPattern.ReplaceAllString(content, "")
	text = bulletPattern.ReplaceAllString(text, "")
	text = blankRunPattern.ReplaceAllString(text, "\n\n")
	text = strings.TrimSpace(text)

	runes := []rune(text)
	if len(runes) > maxChars {
		return string(runes[:maxChars])
	}
	return text
}
