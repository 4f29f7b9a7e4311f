// Package display renders the tasks of a scheduler as a block of
// status lines that is redrawn in place on a terminal.
package display

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/containerd/console"
	"github.com/morikuni/aec"

	"github.com/webriots/tick"
)

const defaultWidth = 80

type Display struct {
	sync.Mutex

	w         io.Writer
	width     int
	ansi      bool
	lineCount int
}

// New returns a display drawing to the terminal behind f. It fails
// when f is not a terminal.
func New(f console.File) (*Display, error) {
	c, err := console.ConsoleFromFile(f)
	if err != nil {
		return nil, err
	}

	size, err := c.Size()
	width := defaultWidth
	if err == nil && size.Width > 0 {
		width = int(size.Width)
	}

	return &Display{
		w:     c,
		width: width,
		ansi:  true,
	}, nil
}

// NewWriter returns a display for a plain writer. Frames are appended
// without colors or cursor movement. A width below one means 80
// columns.
func NewWriter(w io.Writer, width int) *Display {
	if width < 1 {
		width = defaultWidth
	}
	return &Display{
		w:     w,
		width: width,
	}
}

// Draw replaces the previously drawn frame with a header line and one
// line per task.
func (d *Display) Draw(title string, tasks []tick.TaskStatus) error {
	d.Lock()
	defer d.Unlock()

	var buf bytes.Buffer
	lines := 0
	line := func(s string, color aec.ANSI) {
		if d.ansi {
			s = aec.Apply(s, color)
		}
		buf.WriteString(s)
		buf.WriteByte('\n')
		lines++
	}

	header := aec.EmptyBuilder.BlueB().BlackF().ANSI
	line(d.align(title, fmt.Sprintf("%d tasks", len(tasks))), header)
	for _, t := range tasks {
		line(d.align(
			fmt.Sprintf("=> %s (%s)", t.Name, t.State),
			fmt.Sprintf("%s #%d", t.Wait, t.Frames),
		), stateColor(t))
	}

	if d.ansi {
		fmt.Fprint(d.w, aec.Hide)
		defer fmt.Fprint(d.w, aec.Show)
		d.erase()
	}

	_, err := io.Copy(d.w, &buf)
	d.lineCount = lines
	return err
}

// Snapshot keeps the current frame on screen. The next Draw starts
// below it.
func (d *Display) Snapshot() {
	d.Lock()
	defer d.Unlock()

	d.lineCount = 0
}

func (d *Display) erase() {
	if d.lineCount == 0 {
		return
	}

	b := aec.EmptyBuilder
	for i := 0; i < d.lineCount; i++ {
		b = b.Up(1).EraseLine(aec.EraseModes.All)
	}
	b = b.Column(0)

	fmt.Fprint(d.w, b.ANSI)

	d.lineCount = 0
}

func (d *Display) align(left, right string) string {
	pad := d.width - utf8.RuneCountInString(left) - utf8.RuneCountInString(right)
	if pad < 1 {
		pad = 1
	}
	return fmt.Sprint(left, strings.Repeat(" ", pad), right)
}

func stateColor(t tick.TaskStatus) aec.ANSI {
	switch {
	case t.Wait.Kind == tick.Done:
		return aec.GreenF
	case t.State == tick.StateCreated:
		return aec.Faint
	case t.State == tick.StateDone:
		return aec.GreenF
	default:
		return aec.BlueF
	}
}
