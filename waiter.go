package tick

import (
	"errors"
	"fmt"
	"time"
)

var errDone = errors.New("tick: done")

// Waiter is the handle a step function suspends through. It belongs
// to a single coroutine and is only valid while that coroutine runs.
type Waiter struct {
	yield    func(Wait) bool
	canceled error
	closed   bool
}

func newWaiter(yield func(Wait) bool) *Waiter {
	return &Waiter{
		yield:    yield,
		canceled: fmt.Errorf("%w", ErrCanceled),
	}
}

// NextFrame suspends until the next frame.
func (w *Waiter) NextFrame() {
	w.suspend(NextFrame())
}

// ForFrames suspends for n frames.
func (w *Waiter) ForFrames(n int) {
	w.suspend(ForFrames(n))
}

// ForDuration suspends until at least d of game time has passed.
func (w *Waiter) ForDuration(d time.Duration) {
	w.suspend(ForDuration(d))
}

// ForSeconds suspends for s seconds of game time.
func (w *Waiter) ForSeconds(s float64) {
	w.suspend(ForSeconds(s))
}

// Done finishes the coroutine. It does not return: the step function
// unwinds, running its deferred calls, and the coroutine produces no
// further waits.
func (w *Waiter) Done() {
	if w.closed {
		panic(ErrCanceled)
	}
	w.closed = true
	panic(errDone)
}

func (w *Waiter) suspend(wt Wait) {
	if w.closed {
		panic(ErrCanceled)
	}
	if !w.yield(wt) {
		w.closed = true
		panic(w.canceled)
	}
}

// unwinding reports whether p is one of the panics this waiter raised
// to end its step function.
func (w *Waiter) unwinding(p any) bool {
	err, ok := p.(error)
	return ok && (err == errDone || err == w.canceled)
}
