// Offline eSpeak/eSpeak-NG implementation
package speech

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"audioverse/internal/audio"
	"audioverse/internal/domain/podcast"

	"github.com/sirupsen/logrus"
)

// LocalCredential stands in for the credential of engines that need none
const LocalCredential = "local"

// ESpeakVoices is the catalog offered for the eSpeak engine
var ESpeakVoices = []podcast.VoiceOption{
	{ID: "en-us", Name: "English (US)"},
	{ID: "en-gb", Name: "English (UK)"},
	{ID: "en-gb-scotland", Name: "English (Scotland)"},
	{ID: "en-029", Name: "English (Caribbean)"},
}

// ESpeakEngine renders speech locally by running eSpeak with --stdout and
// capturing the WAV it writes.
type ESpeakEngine struct {
	path  string
	speed int // words per minute
}

func newESpeakEngine() (*ESpeakEngine, error) {
	espeakPath, err := findESpeakExecutable()
	if err != nil {
		return nil, fmt.Errorf("eSpeak not found: %w", err)
	}
	return NewESpeakEngineAt(espeakPath), nil
}

// NewESpeakEngineAt uses the executable at path
func NewESpeakEngineAt(path string) *ESpeakEngine {
	return &ESpeakEngine{path: path, speed: 175}
}

func findESpeakExecutable() (string, error) {
	// Try different possible eSpeak executables
	candidates := []string{"espeak-ng", "espeak"}

	for _, candidate := range candidates {
		if path, err := exec.LookPath(candidate); err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("eSpeak executable not found in PATH")
}

func (e *ESpeakEngine) Name() string { return EngineTypeESpeak.String() }

func (e *ESpeakEngine) NeedsCredential() bool { return false }

func (e *ESpeakEngine) Voices() []podcast.VoiceOption {
	return ESpeakVoices
}

func (e *ESpeakEngine) Synthesize(ctx context.Context, req Request) (*audio.Resource, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	args := []string{"--stdout", "-v", req.VoiceID, "-s", strconv.Itoa(e.speed), "--", req.Text}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, e.path, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("eSpeak failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("eSpeak produced no audio")
	}

	logrus.WithFields(logrus.Fields{
		"voice": req.VoiceID,
		"bytes": stdout.Len(),
	}).Info("Synthesized audio with eSpeak")

	return audio.NewResource(req.Title, audio.FormatWAV, stdout.Bytes()), nil
}
