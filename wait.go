package tick

import (
	"fmt"
	"math"
	"time"
)

// Forever is the duration of a Seconds wait that never becomes ready.
const Forever = time.Duration(math.MaxInt64)

// Kind identifies what a Wait is waiting for.
type Kind uint8

const (
	// Frames waits for a number of frames to pass.
	Frames Kind = iota
	// Seconds waits for an amount of game time to pass.
	Seconds
	// Done never becomes ready.
	Done
)

func (k Kind) String() string {
	switch k {
	case Frames:
		return "Frames"
	case Seconds:
		return "Seconds"
	case Done:
		return "Done"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Wait is the suspension request a coroutine hands back to its driver
// each time it yields.
type Wait struct {
	Kind     Kind
	Frames   int
	Duration time.Duration
}

// NextFrame waits for exactly one frame.
func NextFrame() Wait {
	return ForFrames(1)
}

// ForFrames waits for n frames. Negative counts are treated as zero.
func ForFrames(n int) Wait {
	if n < 0 {
		n = 0
	}
	return Wait{Kind: Frames, Frames: n}
}

// ForDuration waits until at least d of game time has passed.
func ForDuration(d time.Duration) Wait {
	return Wait{Kind: Seconds, Duration: d}
}

// ForSeconds is ForDuration expressed in fractional seconds. NaN and
// values too large for a time.Duration wait Forever; values too small
// are ready at once.
func ForSeconds(s float64) Wait {
	ns := s * float64(time.Second)
	switch {
	case math.IsNaN(ns), ns >= math.MaxInt64:
		return ForDuration(Forever)
	case ns <= math.MinInt64:
		return ForDuration(math.MinInt64)
	}
	return ForDuration(time.Duration(ns))
}

// Finished is the wait of a coroutine that will never run again.
func Finished() Wait {
	return Wait{Kind: Done}
}

func (w Wait) String() string {
	switch w.Kind {
	case Frames:
		return fmt.Sprintf("Frames(%d)", w.Frames)
	case Seconds:
		if w.Duration == Forever {
			return "Seconds(forever)"
		}
		return fmt.Sprintf("Seconds(%s)", w.Duration)
	default:
		return w.Kind.String()
	}
}

// schedule counts the wait down by one frame that lasted delta.
// Negative deltas count as zero and the remaining duration saturates
// at math.MinInt64.
func (w *Wait) schedule(delta time.Duration) {
	switch w.Kind {
	case Frames:
		if w.Frames > 0 {
			w.Frames--
		}
	case Seconds:
		if w.Duration == Forever || delta <= 0 {
			return
		}
		if w.Duration < math.MinInt64+delta {
			w.Duration = math.MinInt64
			return
		}
		w.Duration -= delta
	}
}

func (w Wait) ready() bool {
	switch w.Kind {
	case Frames:
		return w.Frames == 0
	case Seconds:
		return w.Duration <= 0
	default:
		return false
	}
}
