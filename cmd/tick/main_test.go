package main

import (
	"bytes"
	"context"
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"

	"github.com/webriots/tick"
	"github.com/webriots/tick/internal/engine"
	"github.com/webriots/tick/internal/scene"
	"github.com/webriots/tick/internal/script"
)

func TestRunUntilIdle(t *testing.T) {
	r := require.New(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	err := run(ctx, options{scene: "testdata/countdown.yaml", frames: -1, fps: 1000, quiet: true}, &bytes.Buffer{}, logger)
	r.NoError(err)

	out := logs.String()
	r.Contains(out, `msg="countdown 3"`)
	r.Contains(out, `msg="countdown 1"`)
	r.Contains(out, "liftoff at frame")
	r.Contains(out, "warm after")
	r.NotContains(out, "interrupted")
}

func TestRunFrameLimitDraws(t *testing.T) {
	var stdout, logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	err := run(context.Background(), options{scene: "testdata/countdown.yaml", frames: 5, fps: 1000}, &stdout, logger)
	require.NoError(t, err)
	require.Contains(t, stdout.String(), "countdown (frame 5,")
	require.Contains(t, stdout.String(), "=> countdown (suspended)")
}

func TestRunInterrupted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	err := run(ctx, options{scene: "testdata/countdown.yaml", frames: -1, quiet: true}, &bytes.Buffer{}, logger)
	require.NoError(t, err)
	require.Contains(t, logs.String(), "msg=interrupted")
}

func TestRunBadScene(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	err := run(context.Background(), options{scene: "testdata/missing.yaml", quiet: true}, &bytes.Buffer{}, logger)
	require.ErrorContains(t, err, "could not read scene")
}

func TestParseArgs(t *testing.T) {
	var out bytes.Buffer
	opts, err := parseArgs([]string{"-scene", "a.yaml", "-fps", "120", "-watch", "-v"}, &out)
	require.NoError(t, err)
	require.Equal(t, options{scene: "a.yaml", frames: -1, fps: 120, watch: true, verbose: true}, opts)
	require.Empty(t, out.String())

	tests := []struct {
		name string
		args []string
		want error
	}{
		{"help", []string{"-h"}, flag.ErrHelp},
		{"missing scene", []string{"-quiet"}, errNoScene},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			_, err := parseArgs(tt.args, &out)
			require.ErrorIs(t, err, tt.want)
			require.Contains(t, out.String(), "usage: tick [options] -scene <file>")
		})
	}

	out.Reset()
	_, err = parseArgs([]string{"-frames", "many"}, &out)
	require.Error(t, err)
	require.Contains(t, out.String(), "invalid value")
	require.Contains(t, out.String(), "usage: tick")
}

func TestRunRejectsFrameRate(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	err := run(context.Background(), options{scene: "testdata/countdown.yaml", fps: int(time.Second) + 1, quiet: true}, &bytes.Buffer{}, logger)
	require.ErrorIs(t, err, engine.ErrFrameRate)
}

func writeAtomic(t *testing.T, path, content string) {
	t.Helper()

	tmp := filepath.Join(filepath.Dir(path), ".tmp-"+filepath.Base(path))
	require.NoError(t, os.WriteFile(tmp, []byte(content), 0o644))
	require.NoError(t, os.Rename(tmp, path))
}

func TestReloaderSwapsScene(t *testing.T) {
	r := require.New(t)

	path := filepath.Join(t.TempDir(), "scene.yaml")
	writeAtomic(t, path, `
name: looping
tasks:
  - name: first
    kind: run
    script: "function (wait) { for (;;) wait.nextFrame() }"
`)
	sc, err := scene.Load(path)
	r.NoError(err)

	fc := tick.NewFrameClock(clock.NewMock())
	sched := tick.NewScheduler(fc)
	defer sched.Stop()

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	env := script.Env{Clock: fc, Logger: logger}
	r.NoError(sc.Spawn(sched, env))

	rl, err := newReloader(path, sc, sched, env, logger)
	r.NoError(err)

	writeAtomic(t, path, `
name: looping
tasks:
  - name: second
    kind: run
    script: "function (wait) { for (;;) wait.nextFrame() }"
  - name: third
    kind: run
    script: "function (wait) { for (;;) wait.nextFrame() }"
`)

	r.Eventually(func() bool {
		_ = rl.PreUpdate()
		sched.Update(time.Millisecond)
		return sched.Len() == 2
	}, 5*time.Second, 10*time.Millisecond)

	names := []string{}
	for _, st := range sched.Snapshot() {
		names = append(names, st.Name)
	}
	r.ElementsMatch([]string{"second", "third"}, names)

	r.NoError(rl.Close())
	r.Contains(logs.String(), "scene reloaded")
}

func TestReloaderIgnoresOtherFiles(t *testing.T) {
	r := require.New(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "scene.yaml")
	writeAtomic(t, path, "name: empty\n")
	sc, err := scene.Load(path)
	r.NoError(err)

	fc := tick.NewFrameClock(clock.NewMock())
	sched := tick.NewScheduler(fc)
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	rl, err := newReloader(path, sc, sched, script.Env{}, logger)
	r.NoError(err)
	r.Equal(map[string]bool{rl.path: true}, rl.files)

	r.NoError(os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0o644))
	r.Never(func() bool {
		return len(rl.scenes) > 0
	}, 200*time.Millisecond, 10*time.Millisecond)

	r.NoError(rl.Close())
}
