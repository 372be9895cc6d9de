package speech

import (
	"fmt"
	"os"

	"audioverse/internal/config"
)

type EngineType string

const (
	EngineTypeElevenLabs EngineType = "elevenlabs"
	EngineTypeGoogle     EngineType = "google"
	EngineTypeESpeak     EngineType = "espeak"
	EngineTypeAuto       EngineType = "auto" // Google when its credentials are present, else ElevenLabs
)

func (e EngineType) String() string {
	return string(e)
}

// NewSynthesizer creates a synthesis engine based on the provided config
func NewSynthesizer(cfg config.SpeechConfig) (Synthesizer, error) {
	engine := cfg.Engine
	if engine == "" || engine == EngineTypeAuto.String() {
		engine = bestEngine().String()
	}

	switch engine {
	case EngineTypeElevenLabs.String():
		return NewElevenLabsEngine(cfg), nil

	case EngineTypeGoogle.String():
		return NewGoogleEngine(), nil

	case EngineTypeESpeak.String():
		return newESpeakEngine()

	default:
		return nil, fmt.Errorf("unsupported speech engine type: %s", cfg.Engine)
	}
}

func bestEngine() EngineType {
	if hasGoogleCredentials() {
		return EngineTypeGoogle
	}
	return EngineTypeElevenLabs
}

// GetAvailableEngines returns engines usable on this machine
func GetAvailableEngines() []EngineType {
	engines := []EngineType{EngineTypeElevenLabs}

	if hasGoogleCredentials() {
		engines = append(engines, EngineTypeGoogle)
	}
	if _, err := findESpeakExecutable(); err == nil {
		engines = append(engines, EngineTypeESpeak)
	}

	return engines
}

// DefaultCredential returns the credential the environment offers for an
// engine, used only when the caller supplied none.
func DefaultCredential(s Synthesizer, cfg config.SpeechConfig) string {
	if !s.NeedsCredential() {
		return LocalCredential
	}
	if s.Name() == EngineTypeGoogle.String() {
		return os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")
	}
	return cfg.APIKey
}

// hasGoogleCredentials checks if Google Cloud credentials are available
func hasGoogleCredentials() bool {
	_, ok := os.LookupEnv("GOOGLE_APPLICATION_CREDENTIALS")
	return ok
}
