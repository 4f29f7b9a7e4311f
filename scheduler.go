package tick

import (
	"errors"
	"io"
	"log/slog"
	"time"
)

// TaskStatus is a point-in-time view of a scheduled coroutine.
type TaskStatus struct {
	Name   string
	State  State
	Wait   Wait
	Frames int
}

type task struct {
	name     string
	co       *Coroutine
	wait     Wait
	frames   int
	stopping bool
}

// Scheduler drives a set of coroutines from a frame loop. Coroutines
// added with Run, RunFor or Go first run on the next Update; those
// added by a coroutine while an Update is in progress wait for the one
// after it. They are advanced whenever their wait has run out and are
// dropped once they finish. Errors and panics of a coroutine are
// logged and end only that coroutine.
//
// A Scheduler is not safe for concurrent use.
type Scheduler struct {
	clock   Clock
	logger  *slog.Logger
	pending []*task
	tasks   []*task
	current *task
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithLogger sets the logger coroutine failures are reported to.
func WithLogger(l *slog.Logger) SchedulerOption {
	return func(s *Scheduler) {
		s.logger = l
	}
}

// NewScheduler returns a scheduler whose RunFor coroutines read time
// from clock.
func NewScheduler(clock Clock, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		clock:  clock,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run schedules a coroutine for step.
func (s *Scheduler) Run(name string, step Step) *Coroutine {
	co := New(step)
	s.Go(name, co)
	return co
}

// RunFor schedules a RunFor coroutine on the scheduler's clock.
func (s *Scheduler) RunFor(name string, duration time.Duration, f TimedStep) *Coroutine {
	co := RunFor(s.clock, duration, f)
	s.Go(name, co)
	return co
}

// Go schedules an existing coroutine. It must not be advanced by
// anything else afterwards.
func (s *Scheduler) Go(name string, co *Coroutine) {
	s.pending = append(s.pending, &task{
		name: name,
		co:   co,
		wait: ForFrames(0),
	})
}

// Len is the number of scheduled coroutines, pending ones included.
func (s *Scheduler) Len() int {
	return len(s.tasks) + len(s.pending)
}

// Update runs one frame that lasted delta.
func (s *Scheduler) Update(delta time.Duration) {
	s.tidy()
	tasks := s.tasks
	for _, t := range tasks {
		t.wait.schedule(delta)
	}

	// A step may call Stop, so tasks stays intact until every ready
	// task has been advanced.
	for _, t := range tasks {
		if t.wait.ready() {
			s.advance(t)
		}
	}

	live := tasks[:0]
	for _, t := range tasks {
		if t.wait.Kind != Done {
			live = append(live, t)
		}
	}
	clear(tasks[len(live):])
	s.tasks = live
}

// Snapshot reports the state of every scheduled coroutine, running
// ones first.
func (s *Scheduler) Snapshot() []TaskStatus {
	out := make([]TaskStatus, 0, s.Len())
	for _, ts := range [][]*task{s.tasks, s.pending} {
		for _, t := range ts {
			out = append(out, TaskStatus{
				Name:   t.name,
				State:  t.co.State(),
				Wait:   t.wait,
				Frames: t.frames,
			})
		}
	}
	return out
}

// Stop stops every scheduled coroutine and empties the scheduler.
// Panics raised while unwinding are logged. When a coroutine calls
// Stop from inside Update, it is stopped as soon as it suspends.
func (s *Scheduler) Stop() {
	for _, ts := range [][]*task{s.tasks, s.pending} {
		for _, t := range ts {
			if t == s.current {
				t.stopping = true
				continue
			}
			s.stop(t)
		}
	}
	s.tasks = nil
	s.pending = nil
}

func (s *Scheduler) stop(t *task) {
	s.protect(t, func() error {
		t.co.Stop()
		return nil
	})
	t.wait = Finished()
}

func (s *Scheduler) advance(t *task) {
	t.frames++
	s.current = t
	defer func() {
		s.current = nil
		if t.stopping {
			s.stop(t)
		}
	}()
	s.protect(t, func() error {
		w, err := t.co.Next()
		switch {
		case err == nil:
			t.wait = w
		case errors.Is(err, ErrExhausted):
			t.wait = Finished()
		default:
			t.wait = Finished()
			return err
		}
		return nil
	})
}

// protect runs f, logging its error or panic against t. A failed task
// is marked finished.
func (s *Scheduler) protect(t *task, f func() error) {
	defer func() {
		if p := recover(); p != nil {
			t.wait = Finished()
			perr := AsPanicError(p)
			s.logger.Error("coroutine panicked",
				slog.String("task", t.name),
				slog.Any("panic", perr.Value()),
				slog.String("stack", perr.DebugString()),
			)
		}
	}()
	if err := f(); err != nil {
		s.logger.Error("coroutine failed",
			slog.String("task", t.name),
			slog.Int("frame", t.frames),
			slog.Any("error", err),
		)
	}
}

// tidy moves pending coroutines into the active set.
func (s *Scheduler) tidy() {
	s.tasks = append(s.tasks, s.pending...)
	clear(s.pending)
	s.pending = s.pending[:0]
}
