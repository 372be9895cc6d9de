package studio

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"audioverse/internal/audio"
	"audioverse/internal/domain/podcast"
	"audioverse/internal/player"
	"audioverse/internal/script"
	"audioverse/internal/speech"
	"audioverse/internal/storage"

	"github.com/sirupsen/logrus"
)

var (
	ErrBusy               = errors.New("a request of this kind is already in progress")
	ErrMissingInformation = errors.New(speech.MsgMissingInformation)
	ErrNoScript           = errors.New("no script yet, submit a topic first")
	ErrUnknownVoice       = errors.New("unknown voice")
	// ErrSuperseded is returned when a new topic arrived while audio was
	// being generated for the old one
	ErrSuperseded = errors.New("audio discarded, the topic changed while generating")
)

// Player is the playback surface a session drives
type Player interface {
	Open(res *audio.Resource) error
	Close() error
	Play() error
	Pause() error
	Toggle() error
	Seek(percent float64) error
	SetVolume(v int)
	Status() player.Status
	Resource() *audio.Resource
}

// AudioError carries the message shown to the user alongside the cause
type AudioError struct {
	Message string
	Err     error
}

func (e *AudioError) Error() string { return e.Message }
func (e *AudioError) Unwrap() error { return e.Err }

// Session walks one topic at a time through script, voice and audio.
// At most one script and one audio resource are live; submitting a topic
// drops both.
type Session struct {
	mu        sync.Mutex
	generator script.Generator
	synth     speech.Synthesizer
	player    Player
	store     *storage.FileStore
	maxChars  int

	topic      podcast.Topic
	script     *podcast.Script
	voice      *podcast.VoiceOption
	credential string
	// epoch moves on every submitted topic
	epoch uint64

	scriptBusy atomic.Bool
	audioBusy  atomic.Bool
}

func NewSession(gen script.Generator, synth speech.Synthesizer, p Player, store *storage.FileStore, maxChars int) *Session {
	if store == nil {
		store = storage.NewFileStore(".")
	}
	return &Session{
		generator: gen,
		synth:     synth,
		player:    p,
		store:     store,
		maxChars:  maxChars,
	}
}

// SubmitTopic discards the current script and audio, then asks for a new
// script. On failure the session is back to having no script.
func (s *Session) SubmitTopic(ctx context.Context, raw string) (podcast.Script, error) {
	topic, err := podcast.NewTopic(raw)
	if err != nil {
		return podcast.Script{}, err
	}

	if !s.scriptBusy.CompareAndSwap(false, true) {
		return podcast.Script{}, ErrBusy
	}
	defer s.scriptBusy.Store(false)

	s.mu.Lock()
	s.topic = topic
	s.script = nil
	s.epoch++
	s.mu.Unlock()

	if err := s.player.Close(); err != nil {
		logrus.WithError(err).Warn("Failed to release previous audio")
	}

	logrus.WithField("topic", topic.String()).Info("Generating script")
	sc, err := s.generator.Generate(ctx, topic)
	if err != nil {
		s.mu.Lock()
		s.topic = ""
		s.mu.Unlock()

		logrus.WithError(err).WithField("topic", topic.String()).Error("Script generation failed")
		return podcast.Script{}, fmt.Errorf("failed to generate script: %w", err)
	}

	s.mu.Lock()
	s.script = &sc
	s.mu.Unlock()
	return sc, nil
}

func (s *Session) Topic() podcast.Topic {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.topic
}

func (s *Session) Script() (podcast.Script, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.script == nil {
		return podcast.Script{}, false
	}
	return *s.script, true
}

func (s *Session) Voices() []podcast.VoiceOption {
	return s.synth.Voices()
}

// SelectVoice picks a voice by id, name or 1-based catalog index
func (s *Session) SelectVoice(key string) (podcast.VoiceOption, error) {
	v, ok := podcast.FindVoice(s.synth.Voices(), key)
	if !ok {
		return podcast.VoiceOption{}, fmt.Errorf("%w: %q", ErrUnknownVoice, key)
	}

	s.mu.Lock()
	s.voice = &v
	s.mu.Unlock()
	return v, nil
}

func (s *Session) Voice() (podcast.VoiceOption, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.voice == nil {
		return podcast.VoiceOption{}, false
	}
	return *s.voice, true
}

// SetCredential keeps c for this session only
func (s *Session) SetCredential(c string) {
	s.mu.Lock()
	s.credential = strings.TrimSpace(c)
	s.mu.Unlock()
}

func (s *Session) HasCredential() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.credential != "" || !s.synth.NeedsCredential()
}

// GenerateAudio synthesizes the current script with the selected voice and
// loads the result into the player, replacing whatever was loaded.
func (s *Session) GenerateAudio(ctx context.Context) (*audio.Resource, error) {
	s.mu.Lock()
	sc, voice, credential, epoch := s.script, s.voice, s.credential, s.epoch
	s.mu.Unlock()

	if credential == "" && !s.synth.NeedsCredential() {
		credential = speech.LocalCredential
	}
	if sc == nil || voice == nil || credential == "" {
		return nil, ErrMissingInformation
	}

	if !s.audioBusy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer s.audioBusy.Store(false)

	req := speech.Request{
		Text:       speech.CleanText(sc.Content, s.maxChars),
		VoiceID:    voice.ID,
		Credential: credential,
		Title:      sc.Title,
	}

	fields := logrus.Fields{
		"engine": s.synth.Name(),
		"voice":  voice.Name,
		"chars":  len([]rune(req.Text)),
	}
	logrus.WithFields(fields).Info("Generating audio")

	res, err := s.synth.Synthesize(ctx, req)
	if err != nil {
		logrus.WithError(err).WithFields(fields).WithField("status", speech.StatusCode(err)).Error("Audio generation failed")
		return nil, &AudioError{Message: speech.UserMessage(err), Err: err}
	}

	s.mu.Lock()
	stale := epoch != s.epoch
	s.mu.Unlock()
	if stale {
		res.Close()
		return nil, ErrSuperseded
	}

	if err := s.player.Open(res); err != nil {
		logrus.WithError(err).WithField("resource", res.ID).Error("Failed to load audio")
		return nil, fmt.Errorf("failed to load audio: %w", err)
	}
	return res, nil
}

// SaveScript writes the script as markdown into dir, or the configured
// output directory when dir is empty
func (s *Session) SaveScript(dir string) (string, error) {
	sc, ok := s.Script()
	if !ok {
		return "", ErrNoScript
	}
	return s.storeFor(dir).SaveScript(sc)
}

// SaveAudio writes the loaded audio into dir, or the configured output
// directory when dir is empty
func (s *Session) SaveAudio(dir string) (string, error) {
	res := s.player.Resource()
	if res == nil {
		return "", player.ErrNoMedia
	}
	return s.storeFor(dir).SaveAudio(res)
}

func (s *Session) storeFor(dir string) *storage.FileStore {
	if dir == "" {
		return s.store
	}
	return storage.NewFileStore(dir)
}

func (s *Session) Player() Player {
	return s.player
}

// Close releases the audio and forgets the script and credential
func (s *Session) Close() error {
	s.mu.Lock()
	s.topic = ""
	s.script = nil
	s.credential = ""
	s.epoch++
	s.mu.Unlock()

	return s.player.Close()
}
