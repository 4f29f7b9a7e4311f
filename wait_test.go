package tick

import (
	"math"
	"testing"
	"time"
)

func TestWaitSchedule(t *testing.T) {
	tests := []struct {
		name  string
		wait  Wait
		delta time.Duration
		ticks int
		ready bool
	}{
		{"next frame after one tick", NextFrame(), 0, 1, true},
		{"next frame before any tick", NextFrame(), 0, 0, false},
		{"zero frames is ready at once", ForFrames(0), 0, 0, true},
		{"three frames after two ticks", ForFrames(3), 0, 2, false},
		{"three frames after three ticks", ForFrames(3), 0, 3, true},
		{"frames never go negative", ForFrames(1), 0, 5, true},
		{"seconds not yet", ForSeconds(0.5), 100 * time.Millisecond, 4, false},
		{"seconds exactly", ForSeconds(0.5), 100 * time.Millisecond, 5, true},
		{"seconds overshoot", ForDuration(250 * time.Millisecond), 100 * time.Millisecond, 3, true},
		{"done is never ready", Finished(), time.Hour, 10, false},
		{"NaN seconds wait forever", ForSeconds(math.NaN()), time.Hour, 10, false},
		{"infinite seconds wait forever", ForSeconds(math.Inf(1)), math.MaxInt64, 3, false},
		{"huge seconds wait forever", ForSeconds(1e300), time.Hour, 10, false},
		{"negative infinity is ready", ForSeconds(math.Inf(-1)), 0, 0, true},
		{"negative delta does not rewind", ForDuration(time.Millisecond), -time.Hour, 5, false},
		{"minimum duration does not wrap", ForDuration(math.MinInt64 + 1), time.Hour, 3, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := tt.wait
			for i := 0; i < tt.ticks; i++ {
				w.schedule(tt.delta)
			}
			if got := w.ready(); got != tt.ready {
				t.Errorf("ready() = %v, want %v (wait %s)", got, tt.ready, w)
			}
		})
	}
}

func TestWaitString(t *testing.T) {
	tests := []struct {
		wait Wait
		want string
	}{
		{NextFrame(), "Frames(1)"},
		{ForFrames(4), "Frames(4)"},
		{ForSeconds(1.5), "Seconds(1.5s)"},
		{ForSeconds(math.Inf(1)), "Seconds(forever)"},
		{Finished(), "Done"},
		{Wait{Kind: Kind(9)}, "Kind(9)"},
	}
	for _, tt := range tests {
		if got := tt.wait.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestWaitScheduleSaturates(t *testing.T) {
	w := ForDuration(math.MinInt64 + 5)
	w.schedule(time.Hour)
	if w.Duration != math.MinInt64 {
		t.Errorf("Expected duration to saturate at %d, got %d", int64(math.MinInt64), int64(w.Duration))
	}

	w = ForSeconds(math.Inf(1))
	w.schedule(math.MaxInt64)
	if w.Duration != Forever {
		t.Errorf("Expected forever wait to stay forever, got %s", w)
	}
}
