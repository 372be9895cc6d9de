package player

import (
	"fmt"
	"io"
	"sync"
	"time"

	"audioverse/internal/audio"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/wav"
)

// Sink is where the decoded stream is mixed out. Lock/Unlock guard every
// change to streamers the sink is currently pulling from.
type Sink interface {
	Init(format beep.Format) error
	Play(s beep.Streamer)
	Clear()
	Lock()
	Unlock()
}

// Decoder turns an encoded payload into a seekable stream
type Decoder func(rc io.ReadCloser) (beep.StreamSeekCloser, beep.Format, error)

func defaultDecoders() map[string]Decoder {
	return map[string]Decoder{
		audio.FormatMP3: mp3.Decode,
		audio.FormatWAV: func(rc io.ReadCloser) (beep.StreamSeekCloser, beep.Format, error) {
			return wav.Decode(rc)
		},
	}
}

// speakerSink plays through the system audio device
type speakerSink struct {
	mu         sync.Mutex
	sampleRate beep.SampleRate
}

func (s *speakerSink) Init(format beep.Format) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sampleRate == format.SampleRate {
		return nil
	}
	if err := speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10)); err != nil {
		return fmt.Errorf("speaker init at %d Hz: %w", format.SampleRate, err)
	}
	s.sampleRate = format.SampleRate
	return nil
}

func (s *speakerSink) Play(st beep.Streamer) { speaker.Play(st) }
func (s *speakerSink) Clear()               { speaker.Clear() }
func (s *speakerSink) Lock()                { speaker.Lock() }
func (s *speakerSink) Unlock()              { speaker.Unlock() }
