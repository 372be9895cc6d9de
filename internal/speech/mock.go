package speech

import (
	"context"
	"sync"

	"audioverse/internal/audio"
	"audioverse/internal/domain/podcast"
)

// MockSynthesizer records requests and answers with canned data or Err
type MockSynthesizer struct {
	Audio  []byte
	Format string
	Err    error

	mu       sync.Mutex
	requests []Request
	// Block, when set, is waited on before answering
	Block chan struct{}
}

func NewMockSynthesizer(data []byte) *MockSynthesizer {
	return &MockSynthesizer{Audio: data, Format: audio.FormatMP3}
}

func (m *MockSynthesizer) Name() string { return "mock" }

func (m *MockSynthesizer) NeedsCredential() bool { return true }

func (m *MockSynthesizer) Voices() []podcast.VoiceOption {
	return ElevenLabsVoices
}

func (m *MockSynthesizer) Synthesize(ctx context.Context, req Request) (*audio.Resource, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.Block != nil {
		select {
		case <-m.Block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if m.Err != nil {
		return nil, m.Err
	}
	return audio.NewResource(req.Title, m.Format, append([]byte(nil), m.Audio...)), nil
}

// Requests returns the requests that passed validation
func (m *MockSynthesizer) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Request(nil), m.requests...)
}
