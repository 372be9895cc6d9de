//go:build unix

package speech_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"audioverse/internal/audio"
	"audioverse/internal/speech"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeFakeESpeak installs a shell script that echoes its arguments
// after a RIFF marker, standing in for espeak --stdout.
func writeFakeESpeak(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "espeak")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func TestESpeakSynthesize(t *testing.T) {
	engine := speech.NewESpeakEngineAt(writeFakeESpeak(t, `printf 'RIFF'; printf '%s|' "$@"`))

	res, err := engine.Synthesize(context.Background(), speech.Request{
		Text:       "Hello there",
		VoiceID:    "en-gb",
		Credential: speech.LocalCredential,
		Title:      "Exploring Tea",
	})
	require.NoError(t, err)

	assert.Equal(t, audio.FormatWAV, res.Format)
	assert.False(t, engine.NeedsCredential())

	rc, err := res.Open()
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "RIFF--stdout|-v|en-gb|-s|175|--|Hello there|", string(got))
}

func TestESpeakFailure(t *testing.T) {
	engine := speech.NewESpeakEngineAt(writeFakeESpeak(t, `echo "unknown voice" >&2; exit 1`))

	_, err := engine.Synthesize(context.Background(), speech.Request{
		Text: "Hello", VoiceID: "xx", Credential: speech.LocalCredential,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown voice")
}

func TestESpeakNoOutput(t *testing.T) {
	engine := speech.NewESpeakEngineAt(writeFakeESpeak(t, `exit 0`))

	_, err := engine.Synthesize(context.Background(), speech.Request{
		Text: "Hello", VoiceID: "en-us", Credential: speech.LocalCredential,
	})
	assert.Error(t, err)
}
