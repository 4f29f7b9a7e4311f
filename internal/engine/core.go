package engine

import (
	"github.com/webriots/tick"
)

// CoreModule advances game time and the scheduler. It should come
// first so later modules see the current frame.
type CoreModule struct {
	BaseModule

	clock *tick.FrameClock
	sched *tick.Scheduler

	// StopWhenIdle ends the loop once the scheduler has no coroutines
	// left.
	StopWhenIdle bool
}

func NewCoreModule(clock *tick.FrameClock, sched *tick.Scheduler) *CoreModule {
	return &CoreModule{
		clock: clock,
		sched: sched,
	}
}

func (c *CoreModule) Clock() *tick.FrameClock {
	return c.clock
}

func (c *CoreModule) Scheduler() *tick.Scheduler {
	return c.sched
}

func (c *CoreModule) PreUpdate() error {
	c.clock.Tick()
	return nil
}

func (c *CoreModule) Update() error {
	c.sched.Update(c.clock.Delta())
	return nil
}

func (c *CoreModule) Stopped() bool {
	return c.StopWhenIdle && c.sched.Len() == 0
}
