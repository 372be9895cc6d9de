package player

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"audioverse/internal/audio"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/sirupsen/logrus"
)

var ErrNoMedia = errors.New("no audio loaded")

const updateBuffer = 16

// Controller owns at most one audio resource and drives its playback.
//
// Lock order is c.mu then the sink lock. The audio goroutine holds only the
// sink lock, so nothing it calls may take c.mu; end of media is finished on
// its own goroutine for that reason.
type Controller struct {
	mu       sync.Mutex
	sink     Sink
	decoders map[string]Decoder

	state  State
	res    *audio.Resource
	src    beep.StreamSeekCloser
	format beep.Format
	trk    *track
	ctrl   *beep.Ctrl
	vol    *effects.Volume

	// generation changes whenever the loaded media does, so a late
	// end-of-media signal from a torn down track is ignored
	generation uint64

	volume  atomic.Int32
	updates chan Status
}

type Option func(*Controller)

// WithSink replaces the system speaker
func WithSink(s Sink) Option {
	return func(c *Controller) { c.sink = s }
}

// WithDecoder registers a decoder for an audio format
func WithDecoder(format string, d Decoder) Option {
	return func(c *Controller) { c.decoders[format] = d }
}

// NewController creates an empty controller at the given volume (0-100)
func NewController(volume int, opts ...Option) *Controller {
	c := &Controller{
		sink:     &speakerSink{},
		decoders: defaultDecoders(),
		updates:  make(chan Status, updateBuffer),
	}
	c.volume.Store(int32(clampInt(volume, 0, 100)))

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Updates delivers a Status on every state change and on every position
// change while playing. Slow readers miss updates rather than stall audio.
func (c *Controller) Updates() <-chan Status {
	return c.updates
}

// Open takes ownership of res, tearing down whatever was loaded before.
// On failure res is released and the controller is left Empty.
func (c *Controller) Open(res *audio.Resource) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.release()
	if res == nil {
		return ErrNoMedia
	}

	c.res = res
	c.setState(StateLoading)

	decode, ok := c.decoders[res.Format]
	if !ok {
		c.release()
		return fmt.Errorf("unsupported audio format %q", res.Format)
	}

	rc, err := res.Open()
	if err != nil {
		c.release()
		return fmt.Errorf("failed to open audio: %w", err)
	}

	src, format, err := decode(rc)
	if err != nil {
		rc.Close()
		c.release()
		return fmt.Errorf("failed to decode %s audio: %w", res.Format, err)
	}

	if err := c.sink.Init(format); err != nil {
		src.Close()
		c.release()
		return fmt.Errorf("failed to initialise audio output: %w", err)
	}

	c.generation++
	gen := c.generation
	duration := format.SampleRate.D(src.Len())

	c.src = src
	c.format = format
	c.trk = &track{
		src: src,
		onTick: func(pos int) {
			c.publish(c.snapshot(StatePlaying, pos, src.Len(), format))
		},
		onEnd: func() {
			go c.finish(gen)
		},
	}
	c.ctrl = &beep.Ctrl{Streamer: c.trk, Paused: true}
	c.vol = &effects.Volume{Streamer: c.ctrl, Base: 2}
	c.applyVolume()

	c.sink.Play(c.vol)
	c.setState(StatePaused)

	logrus.WithFields(logrus.Fields{
		"resource":    res.ID,
		"format":      res.Format,
		"sample_rate": int(format.SampleRate),
		"duration":    duration.Round(time.Millisecond),
	}).Debug("Audio loaded")

	return nil
}

func (c *Controller) Play() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateEmpty, StateLoading:
		return ErrNoMedia
	case StatePlaying:
		return nil
	}

	c.sink.Lock()
	c.ctrl.Paused = false
	c.sink.Unlock()

	c.setState(StatePlaying)
	return nil
}

func (c *Controller) Pause() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateEmpty, StateLoading:
		return ErrNoMedia
	case StatePlaying:
		c.sink.Lock()
		c.ctrl.Paused = true
		c.sink.Unlock()
		c.setState(StatePaused)
	}
	return nil
}

// Toggle plays when paused or ended and pauses when playing
func (c *Controller) Toggle() error {
	c.mu.Lock()
	playing := c.state == StatePlaying
	c.mu.Unlock()

	if playing {
		return c.Pause()
	}
	return c.Play()
}

// Seek jumps to percent (clamped to [0,100]) of the duration without
// touching the play/pause state.
func (c *Controller) Seek(percent float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.state.Ready() {
		return ErrNoMedia
	}

	percent = clampFloat(percent, 0, 100)

	c.sink.Lock()
	target := int(math.Round(percent / 100 * float64(c.src.Len())))
	err := c.src.Seek(target)
	c.trk.ended.Store(false)
	c.sink.Unlock()

	if err != nil {
		return fmt.Errorf("failed to seek to %.1f%%: %w", percent, err)
	}

	c.publish(c.statusLocked())
	return nil
}

// SetVolume applies v (clamped to [0,100]) immediately; 0 mutes
func (c *Controller) SetVolume(v int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.volume.Store(int32(clampInt(v, 0, 100)))
	if c.vol != nil {
		c.applyVolume()
	}
	c.publish(c.statusLocked())
}

func (c *Controller) Volume() int {
	return int(c.volume.Load())
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Resource returns the loaded resource, or nil when Empty
func (c *Controller) Resource() *audio.Resource {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.res
}

func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statusLocked()
}

// Close pauses, detaches the source from the sink and releases the
// resource. Safe to call in any state.
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.release()
	return nil
}

// finish handles end of media: rewind, pause and report Ended. A seek that
// lands between the track running dry and this call clears the ended flag
// and wins.
func (c *Controller) finish(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation || !c.state.Ready() || !c.trk.ended.Load() {
		return
	}

	c.sink.Lock()
	c.ctrl.Paused = true
	if err := c.src.Seek(0); err != nil {
		logrus.WithError(err).Warn("Failed to rewind audio")
	}
	c.trk.ended.Store(false)
	c.sink.Unlock()

	c.setState(StateEnded)
}

// release tears down the current media. Caller holds c.mu.
func (c *Controller) release() {
	if c.ctrl != nil {
		c.sink.Lock()
		c.ctrl.Paused = true
		c.sink.Unlock()
		c.sink.Clear()
	}
	if c.src != nil {
		if err := c.src.Close(); err != nil {
			logrus.WithError(err).Debug("Failed to close decoder")
		}
	}
	if c.res != nil {
		c.res.Close()
	}

	c.src, c.trk, c.ctrl, c.vol, c.res = nil, nil, nil, nil, nil
	c.format = beep.Format{}
	c.generation++

	if c.state != StateEmpty {
		c.setState(StateEmpty)
	}
}

// applyVolume maps 0-100 onto the Volume effect. Caller holds c.mu.
func (c *Controller) applyVolume() {
	v := c.volume.Load()

	c.sink.Lock()
	c.vol.Silent = v == 0
	if v > 0 {
		// gain = 2^Volume, so log2 of the linear fraction
		c.vol.Volume = math.Log2(float64(v) / 100)
	}
	c.sink.Unlock()
}

func (c *Controller) setState(s State) {
	c.state = s
	c.publish(c.statusLocked())
}

func (c *Controller) statusLocked() Status {
	if c.src == nil {
		return Status{State: c.state, Volume: c.Volume()}
	}

	c.sink.Lock()
	pos, length := c.src.Position(), c.src.Len()
	c.sink.Unlock()

	return c.snapshot(c.state, pos, length, c.format)
}

func (c *Controller) snapshot(state State, pos, length int, format beep.Format) Status {
	st := Status{
		State:    state,
		Elapsed:  format.SampleRate.D(pos),
		Duration: format.SampleRate.D(length),
		Volume:   c.Volume(),
	}
	if length > 0 {
		st.Progress = float64(pos) / float64(length) * 100
	}
	return st
}

func (c *Controller) publish(s Status) {
	select {
	case c.updates <- s:
	default:
	}
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

func clampFloat(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(v, hi))
}
