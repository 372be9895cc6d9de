package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"audioverse/internal/audio"
	"audioverse/internal/config"
	"audioverse/internal/domain/podcast"

	"github.com/sirupsen/logrus"
)

// ElevenLabsVoices is the fixed catalog offered for the ElevenLabs engine
var ElevenLabsVoices = []podcast.VoiceOption{
	{ID: "9BWtsMINqrJLrRacOk9x", Name: "Aria"},
	{ID: "CwhRBWXzGAHq8TQ4Fs17", Name: "Roger"},
	{ID: "EXAVITQu4vr4xnSDxMaL", Name: "Sarah"},
	{ID: "IKne3meq5aSn9XLyUdCD", Name: "Charlie"},
	{ID: "JBFqnCBsd6RMkjVDRZzb", Name: "George"},
	{ID: "XB0fDUnXU5powFXDhCwa", Name: "Charlotte"},
}

type elevenLabsRequest struct {
	Text          string                `json:"text"`
	ModelID       string                `json:"model_id"`
	VoiceSettings elevenLabsVoiceConfig `json:"voice_settings"`
}

type elevenLabsVoiceConfig struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

// ElevenLabsEngine implements Synthesizer using the ElevenLabs REST API.
// One request per call, no retries.
type ElevenLabsEngine struct {
	baseURL         string
	modelID         string
	stability       float64
	similarityBoost float64
	httpClient      *http.Client
}

func NewElevenLabsEngine(cfg config.SpeechConfig) *ElevenLabsEngine {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	modelID := cfg.ModelID
	if modelID == "" {
		modelID = "eleven_monolingual_v1"
	}
	baseURL := cfg.Endpoint
	if baseURL == "" {
		baseURL = "https://api.elevenlabs.io"
	}

	return &ElevenLabsEngine{
		baseURL:         strings.TrimRight(baseURL, "/"),
		modelID:         modelID,
		stability:       cfg.Stability,
		similarityBoost: cfg.SimilarityBoost,
		httpClient:      &http.Client{Timeout: timeout},
	}
}

func (e *ElevenLabsEngine) Name() string { return EngineTypeElevenLabs.String() }

func (e *ElevenLabsEngine) NeedsCredential() bool { return true }

func (e *ElevenLabsEngine) Voices() []podcast.VoiceOption {
	return ElevenLabsVoices
}

func (e *ElevenLabsEngine) Synthesize(ctx context.Context, req Request) (*audio.Resource, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(elevenLabsRequest{
		Text:    req.Text,
		ModelID: e.modelID,
		VoiceSettings: elevenLabsVoiceConfig{
			Stability:       e.stability,
			SimilarityBoost: e.similarityBoost,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode synthesis request: %w", err)
	}

	apiURL := fmt.Sprintf("%s/v1/text-to-speech/%s", e.baseURL, url.PathEscape(req.VoiceID))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create synthesis request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "audio/mpeg")
	httpReq.Header.Set("xi-api-key", req.Credential)

	start := time.Now()
	resp, err := e.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{
			Engine: "ElevenLabs",
			Code:   resp.StatusCode,
			Body:   strings.TrimSpace(string(body)),
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read audio: %w", ErrNetwork, err)
	}

	logrus.WithFields(logrus.Fields{
		"voice":    req.VoiceID,
		"chars":    len([]rune(req.Text)),
		"bytes":    len(data),
		"duration": time.Since(start).Round(time.Millisecond),
	}).Info("Synthesized audio with ElevenLabs")

	return audio.NewResource(req.Title, audio.FormatMP3, data), nil
}
