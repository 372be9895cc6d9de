package player

import (
	"errors"
	"io"
	"math"
	"sync"
	"testing"
	"time"

	"audioverse/internal/audio"

	"github.com/faiface/beep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRate = beep.SampleRate(44100)

var testFormat = beep.Format{SampleRate: testRate, NumChannels: 2, Precision: 2}

// fakeStream is a decoded source of constant samples
type fakeStream struct {
	pos    int
	length int
	closed bool
}

func (f *fakeStream) Stream(samples [][2]float64) (int, bool) {
	if f.pos >= f.length {
		return 0, false
	}
	n := min(len(samples), f.length-f.pos)
	for i := 0; i < n; i++ {
		samples[i] = [2]float64{0.5, 0.5}
	}
	f.pos += n
	return n, true
}

func (f *fakeStream) Err() error    { return nil }
func (f *fakeStream) Len() int      { return f.length }
func (f *fakeStream) Position() int { return f.pos }
func (f *fakeStream) Close() error  { f.closed = true; return nil }

func (f *fakeStream) Seek(p int) error {
	if p < 0 || p > f.length {
		return errors.New("seek out of range")
	}
	f.pos = p
	return nil
}

// fakeSink stands in for the speaker; pump plays the role of the audio
// goroutine.
type fakeSink struct {
	sync.Mutex
	streamers []beep.Streamer
	formats   []beep.Format
	cleared   int
	initErr   error
}

func (s *fakeSink) Init(f beep.Format) error {
	if s.initErr != nil {
		return s.initErr
	}
	s.formats = append(s.formats, f)
	return nil
}

func (s *fakeSink) Play(st beep.Streamer) {
	s.Lock()
	defer s.Unlock()
	s.streamers = append(s.streamers, st)
}

func (s *fakeSink) Clear() {
	s.Lock()
	defer s.Unlock()
	s.streamers = nil
	s.cleared++
}

func (s *fakeSink) pump(n int) [][2]float64 {
	s.Lock()
	defer s.Unlock()

	buf := make([][2]float64, n)
	for _, st := range s.streamers {
		st.Stream(buf)
	}
	return buf
}

func (s *fakeSink) active() int {
	s.Lock()
	defer s.Unlock()
	return len(s.streamers)
}

func fakeDecoder(stream *fakeStream) Decoder {
	return func(rc io.ReadCloser) (beep.StreamSeekCloser, beep.Format, error) {
		rc.Close()
		return stream, testFormat, nil
	}
}

func newTestController(t *testing.T, seconds int) (*Controller, *fakeSink, *fakeStream, *audio.Resource) {
	t.Helper()

	sink := &fakeSink{}
	stream := &fakeStream{length: seconds * int(testRate)}
	c := NewController(80, WithSink(sink), WithDecoder("fake", fakeDecoder(stream)))

	res := audio.NewResource("Exploring Tests", "fake", []byte("payload"))
	require.NoError(t, c.Open(res))
	return c, sink, stream, res
}

func drain(c *Controller) []Status {
	var out []Status
	for {
		select {
		case s := <-c.Updates():
			out = append(out, s)
		default:
			return out
		}
	}
}

func TestOpenMovesThroughLoadingToPaused(t *testing.T) {
	sink := &fakeSink{}
	stream := &fakeStream{length: 200 * int(testRate)}
	c := NewController(80, WithSink(sink), WithDecoder("fake", fakeDecoder(stream)))
	assert.Equal(t, StateEmpty, c.State())

	require.NoError(t, c.Open(audio.NewResource("t", "fake", []byte("x"))))

	updates := drain(c)
	require.Len(t, updates, 2)
	assert.Equal(t, StateLoading, updates[0].State)
	assert.Equal(t, StatePaused, updates[1].State)
	assert.Equal(t, 200*time.Second, updates[1].Duration)

	assert.Equal(t, 1, sink.active())
	assert.Equal(t, []beep.Format{testFormat}, sink.formats)
}

func TestTransportRequiresMedia(t *testing.T) {
	c := NewController(80, WithSink(&fakeSink{}))

	assert.ErrorIs(t, c.Play(), ErrNoMedia)
	assert.ErrorIs(t, c.Pause(), ErrNoMedia)
	assert.ErrorIs(t, c.Toggle(), ErrNoMedia)
	assert.ErrorIs(t, c.Seek(10), ErrNoMedia)
	assert.ErrorIs(t, c.Open(nil), ErrNoMedia)
	assert.Equal(t, StateEmpty, c.Status().State)
}

func TestPlayPause(t *testing.T) {
	c, sink, stream, _ := newTestController(t, 10)

	// paused: the sink pulls silence and the source does not move
	sink.pump(512)
	assert.Zero(t, stream.pos)

	require.NoError(t, c.Play())
	assert.Equal(t, StatePlaying, c.State())
	require.NoError(t, c.Play())
	assert.Equal(t, StatePlaying, c.State())

	sink.pump(512)
	assert.Equal(t, 512, stream.pos)

	require.NoError(t, c.Pause())
	assert.Equal(t, StatePaused, c.State())
	sink.pump(512)
	assert.Equal(t, 512, stream.pos)

	require.NoError(t, c.Toggle())
	assert.Equal(t, StatePlaying, c.State())
	require.NoError(t, c.Toggle())
	assert.Equal(t, StatePaused, c.State())
}

func TestTicksWhilePlaying(t *testing.T) {
	c, sink, _, _ := newTestController(t, 10)
	require.NoError(t, c.Play())
	drain(c)

	sink.pump(int(testRate))

	updates := drain(c)
	require.NotEmpty(t, updates)
	last := updates[len(updates)-1]
	assert.Equal(t, StatePlaying, last.State)
	assert.Equal(t, time.Second, last.Elapsed)
	assert.Equal(t, 10*time.Second, last.Duration)
	assert.InDelta(t, 10.0, last.Progress, 0.001)
}

func TestSeekConvertsPercentToOffset(t *testing.T) {
	c, _, stream, _ := newTestController(t, 200)

	require.NoError(t, c.Seek(50))
	st := c.Status()
	assert.Equal(t, 100*time.Second, st.Elapsed)
	assert.Equal(t, 200*time.Second, st.Duration)
	assert.InDelta(t, 50.0, st.Progress, 0.001)
	assert.Equal(t, StatePaused, st.State, "seeking leaves play/pause alone")
	assert.Equal(t, 100*int(testRate), stream.pos)

	require.NoError(t, c.Play())
	require.NoError(t, c.Seek(25))
	assert.Equal(t, StatePlaying, c.State())
	assert.Equal(t, 50*time.Second, c.Status().Elapsed)

	require.NoError(t, c.Seek(-20))
	assert.Zero(t, c.Status().Elapsed)
	require.NoError(t, c.Seek(250))
	assert.Equal(t, 200*time.Second, c.Status().Elapsed)
}

func TestVolume(t *testing.T) {
	c, sink, _, _ := newTestController(t, 10)
	require.NoError(t, c.Play())
	assert.Equal(t, 80, c.Volume())

	c.SetVolume(0)
	assert.Equal(t, StatePlaying, c.State(), "muting leaves play/pause alone")
	assert.Zero(t, c.Status().Volume)
	assert.True(t, c.vol.Silent)

	out := sink.pump(64)
	assert.Equal(t, [2]float64{}, out[0])

	c.SetVolume(50)
	assert.False(t, c.vol.Silent)
	assert.InDelta(t, -1.0, c.vol.Volume, 1e-9)
	out = sink.pump(64)
	assert.InDelta(t, 0.25, out[0][0], 1e-9)

	c.SetVolume(180)
	assert.Equal(t, 100, c.Volume())
	assert.InDelta(t, 0.0, c.vol.Volume, 1e-9)

	require.NoError(t, c.Pause())
	c.SetVolume(30)
	assert.Equal(t, StatePaused, c.State())
}

func TestVolumeBeforeOpen(t *testing.T) {
	c := NewController(120, WithSink(&fakeSink{}))
	assert.Equal(t, 100, c.Volume())

	c.SetVolume(-5)
	assert.Zero(t, c.Volume())
	assert.Equal(t, StateEmpty, c.State())
}

func TestEndOfMediaRewinds(t *testing.T) {
	c, sink, stream, _ := newTestController(t, 1)
	require.NoError(t, c.Play())

	sink.pump(int(testRate) - 100)
	sink.pump(512)

	require.Eventually(t, func() bool {
		return c.State() == StateEnded
	}, time.Second, 5*time.Millisecond)

	st := c.Status()
	assert.Zero(t, st.Elapsed)
	assert.Zero(t, st.Progress)
	assert.Zero(t, stream.pos)

	// still attached, silent while ended
	sink.pump(512)
	assert.Zero(t, stream.pos)
	assert.Equal(t, 1, sink.active())

	require.NoError(t, c.Play())
	sink.pump(512)
	assert.Equal(t, 512, stream.pos)
}

func TestSeekAfterTrackEndsKeepsPosition(t *testing.T) {
	c, sink, stream, _ := newTestController(t, 10)
	require.NoError(t, c.Play())
	gen := c.generation

	// the track ran dry and its end handler has not been scheduled yet
	c.trk.ended.Store(true)
	require.NoError(t, c.Seek(50))
	c.finish(gen)

	assert.Equal(t, StatePlaying, c.State())
	assert.Equal(t, 5*time.Second, c.Status().Elapsed)
	assert.Equal(t, 5*int(testRate), stream.pos)

	sink.pump(512)
	assert.Equal(t, 5*int(testRate)+512, stream.pos)
}

func TestOpenReleasesPrevious(t *testing.T) {
	c, sink, first, firstRes := newTestController(t, 10)
	require.NoError(t, c.Play())

	second := &fakeStream{length: 5 * int(testRate)}
	c.decoders["fake"] = fakeDecoder(second)
	secondRes := audio.NewResource("next", "fake", []byte("y"))
	require.NoError(t, c.Open(secondRes))

	assert.True(t, first.closed)
	assert.True(t, firstRes.Released())
	assert.False(t, secondRes.Released())
	assert.Equal(t, 1, sink.cleared)
	assert.Equal(t, 1, sink.active())
	assert.Equal(t, StatePaused, c.State())
	assert.Equal(t, 5*time.Second, c.Status().Duration)
	assert.Same(t, secondRes, c.Resource())
}

func TestCloseReleases(t *testing.T) {
	c, sink, stream, res := newTestController(t, 10)
	require.NoError(t, c.Play())

	require.NoError(t, c.Close())
	assert.Equal(t, StateEmpty, c.State())
	assert.True(t, stream.closed)
	assert.True(t, res.Released())
	assert.Zero(t, sink.active())
	assert.Nil(t, c.Resource())

	require.NoError(t, c.Close())
	assert.ErrorIs(t, c.Play(), ErrNoMedia)
}

func TestOpenFailures(t *testing.T) {
	sink := &fakeSink{}
	c := NewController(80, WithSink(sink), WithDecoder("broken", func(rc io.ReadCloser) (beep.StreamSeekCloser, beep.Format, error) {
		return nil, beep.Format{}, errors.New("bad frame")
	}))

	res := audio.NewResource("t", "broken", []byte("x"))
	err := c.Open(res)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad frame")
	assert.Equal(t, StateEmpty, c.State())
	assert.True(t, res.Released())

	res = audio.NewResource("t", "ogg", []byte("x"))
	require.Error(t, c.Open(res))
	assert.True(t, res.Released())

	released := audio.NewResource("t", "broken", nil)
	released.Close()
	assert.ErrorIs(t, c.Open(released), audio.ErrReleased)

	sink.initErr = errors.New("no device")
	stream := &fakeStream{length: 10}
	c.decoders["fake"] = fakeDecoder(stream)
	require.Error(t, c.Open(audio.NewResource("t", "fake", []byte("x"))))
	assert.True(t, stream.closed)
	assert.Equal(t, StateEmpty, c.State())
}

func TestFormatTime(t *testing.T) {
	assert.Equal(t, "0:00", FormatTime(0))
	assert.Equal(t, "0:09", FormatTime(9*time.Second+500*time.Millisecond))
	assert.Equal(t, "3:20", FormatTime(200*time.Second))
	assert.Equal(t, "0:00", FormatTime(-time.Second))
}

func TestStatusString(t *testing.T) {
	st := Status{State: StatePlaying, Elapsed: 65 * time.Second, Duration: 200 * time.Second, Progress: 32.4, Volume: 80}
	assert.Equal(t, "playing 1:05 / 3:20 (32%) vol 80", st.String())
	assert.Equal(t, "state(9)", State(9).String())
	assert.False(t, math.IsNaN(clampFloat(math.NaN(), 0, 100)))
}
