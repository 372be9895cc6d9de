package player

import (
	"fmt"
	"time"
)

type State int

const (
	StateEmpty State = iota
	StateLoading
	StatePaused
	StatePlaying
	StateEnded
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateLoading:
		return "loading"
	case StatePaused:
		return "paused"
	case StatePlaying:
		return "playing"
	case StateEnded:
		return "ended"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Ready reports whether transport controls apply in this state
func (s State) Ready() bool {
	return s == StatePaused || s == StatePlaying || s == StateEnded
}

// Status is a snapshot of the controller. Progress is in [0,100].
type Status struct {
	State    State
	Elapsed  time.Duration
	Duration time.Duration
	Progress float64
	Volume   int
}

// FormatTime renders d as m:ss
func FormatTime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int(d / time.Second)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

func (s Status) String() string {
	return fmt.Sprintf("%s %s / %s (%.0f%%) vol %d",
		s.State, FormatTime(s.Elapsed), FormatTime(s.Duration), s.Progress, s.Volume)
}
