package tick

import "time"

// TimedStep is called once per frame by a RunFor coroutine with the
// game time elapsed since its first frame and the total duration.
type TimedStep func(elapsed, duration time.Duration) error

// RunFor returns a coroutine that calls f once per frame until the
// elapsed time is strictly greater than duration. The start time is
// read from clock on the first advance. The call that observes
// elapsed > duration is the last one; a call with elapsed equal to
// duration still suspends for another frame. An error from f ends the
// coroutine and is returned by that advance.
func RunFor(clock Clock, duration time.Duration, f TimedStep) *Coroutine {
	return New(func(w *Waiter) error {
		start := clock.Now()
		for {
			elapsed := clock.Since(start)
			if err := f(elapsed, duration); err != nil {
				return err
			}
			if elapsed > duration {
				return nil
			}
			w.NextFrame()
		}
	})
}
