// Package engine runs a fixed-rate frame loop over a list of modules.
//
// Every frame calls PreUpdate on all modules, then Update on all
// modules, then PostUpdate on all modules, in the order the modules
// were given to New.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/webriots/tick"
)

const (
	DefaultFrameRate = 60
	// MaxFrameRate is the highest rate with a frame period of at least
	// one nanosecond.
	MaxFrameRate = int(time.Second)
)

var (
	// ErrInterrupted is returned by Run when its context ends the loop.
	ErrInterrupted = errors.New("engine: interrupted")

	// ErrFrameRate is returned by New for a frame rate above
	// MaxFrameRate.
	ErrFrameRate = errors.New("engine: frame rate out of range")
)

// Module is one part of the frame loop. Embed BaseModule to implement
// only the phases a module needs.
type Module interface {
	Init() error
	PreUpdate() error
	Update() error
	PostUpdate() error
}

// BaseModule implements every Module phase as a no-op.
type BaseModule struct{}

func (BaseModule) Init() error { return nil }
func (BaseModule) PreUpdate() error { return nil }
func (BaseModule) Update() error { return nil }
func (BaseModule) PostUpdate() error { return nil }

// Stopper is implemented by modules that can end the loop. Run
// returns nil after a frame in which any Stopper reports true.
type Stopper interface {
	Stopped() bool
}

// UpdateError reports the frame and phase a module failed in. A
// module panic is carried as a *tick.PanicError.
type UpdateError struct {
	Frame int
	Phase string
	Err   error
}

func (e *UpdateError) Error() string {
	return fmt.Sprintf("frame %d: %s: %v", e.Frame, e.Phase, e.Err)
}

func (e *UpdateError) Unwrap() error {
	return e.Err
}

// DebugString is Error followed by the stacks of a module panic and of
// every coroutine panic nested in it.
func (e *UpdateError) DebugString() string {
	var perr *tick.PanicError
	if !errors.As(e.Err, &perr) {
		return e.Error()
	}
	return fmt.Sprintf("frame %d: %s: %s", e.Frame, e.Phase, perr.DebugString())
}

type Options struct {
	// Clock drives the frame ticker. Nil means the wall clock.
	Clock clock.Clock
	// FrameRate is the number of frames per second. Zero means
	// DefaultFrameRate.
	FrameRate int
	// MaxFrames stops the loop after that many frames. Zero means no
	// limit.
	MaxFrames int
}

type Engine struct {
	clock       clock.Clock
	frameRate   int
	maxFrames   int
	modules     []Module
	frame       int
	initialized bool
}

func New(opts Options, modules ...Module) (*Engine, error) {
	if opts.FrameRate > MaxFrameRate {
		return nil, fmt.Errorf("%w: %d frames per second", ErrFrameRate, opts.FrameRate)
	}
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.FrameRate <= 0 {
		opts.FrameRate = DefaultFrameRate
	}
	return &Engine{
		clock:     opts.Clock,
		frameRate: opts.FrameRate,
		maxFrames: opts.MaxFrames,
		modules:   modules,
	}, nil
}

// Frame is the number of frames run so far.
func (e *Engine) Frame() int {
	return e.frame
}

// FrameDuration is the ticker period.
func (e *Engine) FrameDuration() time.Duration {
	return time.Second / time.Duration(e.frameRate)
}

// Init initializes every module once. Run and Step call it on first
// use.
func (e *Engine) Init() error {
	if e.initialized {
		return nil
	}
	e.initialized = true
	return e.each("init", Module.Init)
}

// Run initializes the modules and runs one frame per tick until the
// frame limit is reached, a Stopper asks to stop, a module fails, or
// ctx is done.
func (e *Engine) Run(ctx context.Context) error {
	if err := e.Init(); err != nil {
		return err
	}

	ticker := e.clock.Ticker(e.FrameDuration())
	defer ticker.Stop()

	for !e.done() {
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", ErrInterrupted, ctx.Err())
		case <-ticker.C:
		}
		if err := e.Step(); err != nil {
			return err
		}
	}
	return nil
}

// Step runs a single frame right away.
func (e *Engine) Step() error {
	if err := e.Init(); err != nil {
		return err
	}
	e.frame++
	if err := e.each("pre-update", Module.PreUpdate); err != nil {
		return err
	}
	if err := e.each("update", Module.Update); err != nil {
		return err
	}
	return e.each("post-update", Module.PostUpdate)
}

func (e *Engine) done() bool {
	if e.maxFrames > 0 && e.frame >= e.maxFrames {
		return true
	}
	for _, m := range e.modules {
		if s, ok := m.(Stopper); ok && s.Stopped() {
			return true
		}
	}
	return false
}

func (e *Engine) each(phase string, f func(Module) error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = &UpdateError{
				Frame: e.frame,
				Phase: phase,
				Err:   tick.AsPanicError(p),
			}
		}
	}()
	for _, m := range e.modules {
		if err := f(m); err != nil {
			return &UpdateError{
				Frame: e.frame,
				Phase: phase,
				Err:   err,
			}
		}
	}
	return nil
}
