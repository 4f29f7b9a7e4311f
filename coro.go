package tick

import (
	"errors"
	"iter"
)

var (
	// ErrExhausted is returned by Next once a coroutine has finished.
	// Every later call returns it again.
	ErrExhausted = errors.New("tick: coroutine exhausted")

	// ErrRunning is returned when a coroutine is advanced from inside
	// its own step function.
	ErrRunning = errors.New("tick: coroutine already running")

	// ErrCanceled is raised inside a step function when its coroutine
	// is stopped while suspended, and when a Waiter is used after its
	// coroutine completed.
	ErrCanceled = errors.New("tick: coroutine canceled")
)

// State is the lifecycle position of a Coroutine.
type State uint8

const (
	StateCreated State = iota
	StateRunning
	StateSuspended
	StateDone
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateRunning:
		return "running"
	case StateSuspended:
		return "suspended"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// Step is the body of a coroutine. It suspends through w and finishes
// by returning or by calling w.Done. A non-nil error is handed to the
// caller of the Next that observed it.
type Step func(w *Waiter) error

// Coroutine is a lazily started, frame-stepped execution of a Step.
// It must only be advanced and stopped from one goroutine at a time.
type Coroutine struct {
	step  Step
	state State
	next  func() (Wait, bool)
	stop  func()
	err   error
	perr  *PanicError
}

// New returns a coroutine for step. The step does not start until
// the first call to Next.
func New(step Step) *Coroutine {
	return &Coroutine{step: step}
}

// State reports where the coroutine is in its lifecycle.
func (c *Coroutine) State() State {
	return c.state
}

// Next runs the step function until its next suspension and returns
// the Wait it asked for.
//
// When the step function returns or calls Done, Next returns
// ErrExhausted. When it returns an error, Next returns that error
// unchanged, and ErrExhausted afterwards. When it panics, Next panics
// with a *PanicError. A finished coroutine is never resumed.
func (c *Coroutine) Next() (Wait, error) {
	switch c.state {
	case StateDone:
		return Finished(), ErrExhausted
	case StateRunning:
		return Finished(), ErrRunning
	case StateCreated:
		c.next, c.stop = iter.Pull(c.run)
	}

	c.state = StateRunning
	w, ok := c.next()
	if ok {
		c.state = StateSuspended
		return w, nil
	}

	c.state = StateDone
	c.stop()
	if p := c.perr; p != nil {
		c.perr = nil
		panic(p)
	}
	if err := c.err; err != nil {
		c.err = nil
		return Finished(), err
	}
	return Finished(), ErrExhausted
}

// Stop cancels the coroutine. A suspended step function is unwound
// from its suspension point with ErrCanceled, so its deferred calls
// run before Stop returns; a panic raised while unwinding propagates
// from Stop as a *PanicError. Stop is a no-op on a finished coroutine
// and panics with ErrRunning when called from inside the step
// function.
func (c *Coroutine) Stop() {
	switch c.state {
	case StateDone:
		return
	case StateCreated:
		c.state = StateDone
		return
	case StateRunning:
		panic(ErrRunning)
	}

	c.state = StateDone
	c.stop()
	c.err = nil
	if p := c.perr; p != nil {
		c.perr = nil
		panic(p)
	}
}

// All returns the remaining waits of the coroutine as a sequence. A
// step error is yielded as the final pair. Breaking out of the loop
// stops the coroutine.
func (c *Coroutine) All() iter.Seq2[Wait, error] {
	return func(yield func(Wait, error) bool) {
		for {
			w, err := c.Next()
			if err == ErrExhausted {
				return
			}
			if err != nil {
				yield(w, err)
				return
			}
			if !yield(w, nil) {
				c.Stop()
				return
			}
		}
	}
}

func (c *Coroutine) run(yield func(Wait) bool) {
	w := newWaiter(yield)
	defer func() {
		w.closed = true
		if p := recover(); p != nil && !w.unwinding(p) {
			c.perr = newPanicError(p)
		}
	}()
	c.err = c.step(w)
}
