package tick

import (
	"time"

	"github.com/benbjohnson/clock"
)

// Clock is a source of game time, measured from the clock's own start.
type Clock interface {
	Now() time.Duration
	Since(ref time.Duration) time.Duration
}

// FrameClock is a Clock that only moves when it is ticked, once per
// frame, so every coroutine advanced during a frame sees the same time.
type FrameClock struct {
	wall  clock.Clock
	frame uint64
	delta time.Duration
	start time.Time
	now   time.Time
}

// NewFrameClock returns a FrameClock reading wall time from c. A nil c
// uses the real clock.
func NewFrameClock(c clock.Clock) *FrameClock {
	if c == nil {
		c = clock.New()
	}
	now := c.Now()
	return &FrameClock{
		wall:  c,
		start: now,
		now:   now,
	}
}

// Tick starts a new frame.
func (fc *FrameClock) Tick() {
	now := fc.wall.Now()
	fc.frame++
	fc.delta = now.Sub(fc.now)
	if fc.delta < 0 {
		fc.delta = 0
	}
	fc.now = now
}

// Frame is the number of frames ticked so far.
func (fc *FrameClock) Frame() uint64 {
	return fc.frame
}

// Delta is the wall time between the last two ticks.
func (fc *FrameClock) Delta() time.Duration {
	return fc.delta
}

func (fc *FrameClock) Now() time.Duration {
	if d := fc.now.Sub(fc.start); d > 0 {
		return d
	}
	return 0
}

func (fc *FrameClock) Since(ref time.Duration) time.Duration {
	return fc.Now() - ref
}
