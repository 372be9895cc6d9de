package speech_test

import (
	"testing"

	"audioverse/internal/config"
	"audioverse/internal/speech"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSynthesizer(t *testing.T) {
	s, err := speech.NewSynthesizer(config.SpeechConfig{Engine: "elevenlabs"})
	require.NoError(t, err)
	assert.Equal(t, "elevenlabs", s.Name())
	assert.True(t, s.NeedsCredential())

	s, err = speech.NewSynthesizer(config.SpeechConfig{Engine: "google"})
	require.NoError(t, err)
	assert.Equal(t, "google", s.Name())

	_, err = speech.NewSynthesizer(config.SpeechConfig{Engine: "festival"})
	assert.Error(t, err)
}

func TestNewSynthesizerAuto(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "/tmp/sa.json")
	s, err := speech.NewSynthesizer(config.SpeechConfig{Engine: "auto"})
	require.NoError(t, err)
	assert.Equal(t, "google", s.Name())
	assert.Equal(t, "/tmp/sa.json", speech.DefaultCredential(s, config.SpeechConfig{}))
	assert.Contains(t, speech.GetAvailableEngines(), speech.EngineTypeGoogle)
}

func TestDefaultCredential(t *testing.T) {
	cfg := config.SpeechConfig{APIKey: "xi-key"}

	s := speech.NewElevenLabsEngine(cfg)
	assert.Equal(t, "xi-key", speech.DefaultCredential(s, cfg))

	e := speech.NewESpeakEngineAt("/usr/bin/espeak")
	assert.Equal(t, speech.LocalCredential, speech.DefaultCredential(e, cfg))
}

func TestStatusErrorMessage(t *testing.T) {
	err := &speech.StatusError{Engine: "ElevenLabs", Code: 401}
	assert.Equal(t, "ElevenLabs API error: 401", err.Error())

	err = &speech.StatusError{Engine: "ElevenLabs", Code: 429, Body: `{"detail":"slow down"}`}
	assert.Equal(t, `ElevenLabs API error: 429 {"detail":"slow down"}`, err.Error())
}
