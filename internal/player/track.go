package player

import (
	"sync/atomic"

	"github.com/faiface/beep"
)

// track sits between the decoder and the Ctrl. It reports the position
// after every buffer and, once the source runs dry, fires onEnd a single
// time and keeps answering with silence so the sink never drops it.
// Both callbacks run on the audio goroutine with the sink locked.
type track struct {
	src    beep.StreamSeeker
	ended  atomic.Bool
	onTick func(pos int)
	onEnd  func()
}

func (t *track) Stream(samples [][2]float64) (int, bool) {
	if t.ended.Load() {
		silence(samples)
		return len(samples), true
	}

	n, ok := t.src.Stream(samples)
	if n > 0 {
		t.onTick(t.src.Position())
	}

	if !ok || (n < len(samples) && t.src.Position() >= t.src.Len()) {
		silence(samples[n:])
		if t.ended.CompareAndSwap(false, true) {
			t.onEnd()
		}
	}
	return len(samples), true
}

func (t *track) Err() error {
	return t.src.Err()
}

func silence(samples [][2]float64) {
	for i := range samples {
		samples[i] = [2]float64{}
	}
}
