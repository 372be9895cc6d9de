package speech_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"audioverse/internal/script"
	"audioverse/internal/speech"

	"github.com/stretchr/testify/assert"
)

func TestCleanText(t *testing.T) {
	content := "# Title\n\n## Intro\nHello there.\n\n\n\n- first\n* second\n  - nested\n\nBye."

	got := speech.CleanText(content, 2000)

	assert.NotContains(t, got, "#")
	assert.NotContains(t, got, "- ")
	assert.NotContains(t, got, "\n\n\n")
	assert.Contains(t, got, "Hello there.")
	assert.Contains(t, got, "first")
	assert.Contains(t, got, "second")
	assert.True(t, strings.HasSuffix(got, "Bye."))
	assert.Equal(t, got, strings.TrimSpace(got))
}

func TestCleanTextTruncatesByRunes(t *testing.T) {
	content := strings.Repeat("é", 50)

	got := speech.CleanText(content, 10)
	assert.Equal(t, 10, utf8.RuneCountInString(got))
	assert.True(t, utf8.ValidString(got))

	assert.Equal(t, "short", speech.CleanText("short", 10))
}

func TestCleanTextFallbackScript(t *testing.T) {
	s := script.Fallback("coral reefs")

	got := speech.CleanText(s.Content, speech.DefaultMaxChars)
	assert.LessOrEqual(t, utf8.RuneCountInString(got), speech.DefaultMaxChars)
	assert.True(t, strings.HasPrefix(got, "Welcome to today's episode"))
	assert.NotContains(t, got, "## ")
	assert.Contains(t, got, "Enhanced efficiency in daily tasks")
}

func TestCleanTextDefaultLimit(t *testing.T) {
	got := speech.CleanText(strings.Repeat("a", 3000), 0)
	assert.Len(t, got, speech.DefaultMaxChars)
}
