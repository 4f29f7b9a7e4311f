package display

import (
	"fmt"

	"github.com/webriots/tick"
	"github.com/webriots/tick/internal/engine"
)

// Module draws the scheduler after every Every-th frame.
type Module struct {
	engine.BaseModule

	display *Display
	title   string
	clock   *tick.FrameClock
	sched   *tick.Scheduler

	// Every is the number of frames between two draws. Values below
	// one draw every frame.
	Every int
}

func NewModule(d *Display, title string, clock *tick.FrameClock, sched *tick.Scheduler) *Module {
	return &Module{
		display: d,
		title:   title,
		clock:   clock,
		sched:   sched,
		Every:   1,
	}
}

func (m *Module) PostUpdate() error {
	every := uint64(max(m.Every, 1))
	if m.clock.Frame()%every != 0 {
		return nil
	}
	return m.Draw()
}

// Draw renders the scheduler right away.
func (m *Module) Draw() error {
	title := fmt.Sprintf("%s (frame %d, %.1fs)", m.title, m.clock.Frame(), m.clock.Now().Seconds())
	return m.display.Draw(title, m.sched.Snapshot())
}
