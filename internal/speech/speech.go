package speech

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"audioverse/internal/audio"
	"audioverse/internal/domain/podcast"
)

// Request carries everything one synthesis call needs. Credentials are
// passed per request and never kept by an engine.
type Request struct {
	Text       string
	VoiceID    string
	Credential string
	Title      string
}

// Synthesizer turns text into a playable audio resource
type Synthesizer interface {
	Synthesize(ctx context.Context, req Request) (*audio.Resource, error)
	Voices() []podcast.VoiceOption
	Name() string
	NeedsCredential() bool
}

var (
	ErrMissingParameter = errors.New("missing required parameters for audio generation")
	ErrNetwork          = errors.New("speech endpoint unreachable")
)

// StatusError reports a non-success answer from a synthesis backend
type StatusError struct {
	Engine string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s API error: %d", e.Engine, e.Code)
	}
	return fmt.Sprintf("%s API error: %d %s", e.Engine, e.Code, e.Body)
}

// StatusCode extracts the backend status code from err, or 0
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code
	}
	return 0
}

const (
	MsgInvalidCredential  = "Invalid API key. Please check your speech API key."
	MsgRateLimited        = "API rate limit reached. Please try again later."
	MsgMissingInformation = "Missing information. Please ensure you have a script, selected voice, and API key."
	MsgGeneric            = "Please check your API key and try again."
)

// UserMessage maps a synthesis failure to the text shown to the user.
// Only 401 and 429 get their own message.
func UserMessage(err error) string {
	if errors.Is(err, ErrMissingParameter) {
		return MsgMissingInformation
	}

	switch StatusCode(err) {
	case http.StatusUnauthorized:
		return MsgInvalidCredential
	case http.StatusTooManyRequests:
		return MsgRateLimited
	default:
		return MsgGeneric
	}
}

func (r Request) validate() error {
	var missing []string
	if strings.TrimSpace(r.Text) == "" {
		missing = append(missing, "text")
	}
	if strings.TrimSpace(r.VoiceID) == "" {
		missing = append(missing, "voice")
	}
	if strings.TrimSpace(r.Credential) == "" {
		missing = append(missing, "credential")
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingParameter, strings.Join(missing, ", "))
	}
	return nil
}
