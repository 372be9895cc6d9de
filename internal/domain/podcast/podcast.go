package podcast

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

var ErrEmptyTopic = errors.New("topic must not be empty")

// Topic is the subject a script is generated for
type Topic string

// NewTopic trims the input and rejects blank topics
func NewTopic(s string) (Topic, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrEmptyTopic
	}
	return Topic(s), nil
}

func (t Topic) String() string {
	return string(t)
}

// Script is a generated podcast episode: a title plus markdown-like body
type Script struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	pathUnsafe    = regexp.MustCompile(`[/\\\x00]`)
)

// ScriptFileName derives the script download name (without extension):
// lower case, dashes for whitespace, "-script" suffix
func (s Script) ScriptFileName() string {
	return strings.ToLower(fileName(s.Title, "-")) + "-script"
}

// FileName replaces every whitespace run in title with a single underscore.
// The result is always a single path element.
func FileName(title string) string {
	return fileName(title, "_")
}

func fileName(title, sep string) string {
	name := whitespaceRun.ReplaceAllString(strings.TrimSpace(title), sep)
	name = pathUnsafe.ReplaceAllString(name, sep)
	name = strings.TrimLeft(name, ".")
	if name == "" {
		return "podcast"
	}
	return name
}

// VoiceOption is an entry in an engine's fixed voice catalog
type VoiceOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// FindVoice looks a voice up by id, by case-insensitive name or by 1-based index
func FindVoice(catalog []VoiceOption, key string) (VoiceOption, bool) {
	key = strings.TrimSpace(key)
	if key == "" {
		return VoiceOption{}, false
	}

	for _, v := range catalog {
		if v.ID == key || strings.EqualFold(v.Name, key) {
			return v, true
		}
	}

	if n, err := strconv.Atoi(key); err == nil && n >= 1 && n <= len(catalog) {
		return catalog[n-1], true
	}

	return VoiceOption{}, false
}
