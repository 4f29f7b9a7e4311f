// Command tick runs a scene of scripted coroutines in a frame loop and
// shows their progress on the terminal.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/containerd/console"

	"github.com/webriots/tick"
	"github.com/webriots/tick/internal/display"
	"github.com/webriots/tick/internal/engine"
	"github.com/webriots/tick/internal/scene"
	"github.com/webriots/tick/internal/script"
)

type options struct {
	scene   string
	frames  int
	fps     int
	watch   bool
	quiet   bool
	verbose bool
}

var errNoScene = errors.New("missing -scene")

func newFlagSet(opts *options) *flag.FlagSet {
	flagset := flag.NewFlagSet("tick", flag.ContinueOnError)
	flagset.Usage = func() {
		w := flagset.Output()
		fmt.Fprintln(w, "usage: tick [options] -scene <file>")
		fmt.Fprintln(w, "")
		fmt.Fprintln(w, "Options:")
		flagset.PrintDefaults()
	}
	flagset.StringVar(&opts.scene, "scene", "", "Scene file (.yaml, .yml or .hcl)")
	flagset.IntVar(&opts.frames, "frames", -1, "Stop after this many frames, 0 runs forever (default: max_frames of the scene)")
	flagset.IntVar(&opts.fps, "fps", 0, "Frames per second (default: frame_rate of the scene)")
	flagset.BoolVar(&opts.watch, "watch", false, "Reload the scene when it or one of its scripts changes")
	flagset.BoolVar(&opts.quiet, "quiet", false, "Do not draw task status")
	flagset.BoolVar(&opts.verbose, "v", false, "Log debug messages")
	return flagset
}

// parseArgs parses the command line. Usage is printed to output for
// -h and for invalid arguments.
func parseArgs(args []string, output io.Writer) (options, error) {
	var opts options
	flagset := newFlagSet(&opts)
	flagset.SetOutput(output)
	if err := flagset.Parse(args); err != nil {
		return opts, err
	}
	if opts.scene == "" {
		fmt.Fprintln(output, errNoScene)
		flagset.Usage()
		return opts, errNoScene
	}
	return opts, nil
}

func main() {
	opts, err := parseArgs(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		os.Exit(2)
	}

	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, os.Stdout, logger); err != nil {
		var uerr *engine.UpdateError
		if errors.As(err, &uerr) {
			logger.Error("tick failed", slog.Any("error", err), slog.String("debug", uerr.DebugString()))
		} else {
			logger.Error("tick failed", slog.Any("error", err))
		}
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, stdout io.Writer, logger *slog.Logger) error {
	sc, err := scene.Load(opts.scene)
	if err != nil {
		return err
	}

	fps := sc.FrameRate
	if opts.fps > 0 {
		fps = opts.fps
	}
	frames := sc.MaxFrames
	if opts.frames >= 0 {
		frames = opts.frames
	}
	logger.Debug("scene loaded",
		slog.String("scene", sc.Name),
		slog.Int("tasks", len(sc.Tasks)),
		slog.Int("fps", fps),
		slog.Int("frames", frames),
	)

	fc := tick.NewFrameClock(nil)
	sched := tick.NewScheduler(fc, tick.WithLogger(logger))
	defer sched.Stop()

	env := script.Env{Clock: fc, Logger: logger}
	if err := sc.Spawn(sched, env); err != nil {
		return err
	}

	core := engine.NewCoreModule(fc, sched)
	core.StopWhenIdle = !opts.watch
	modules := []engine.Module{core}

	if opts.watch {
		rl, err := newReloader(opts.scene, sc, sched, env, logger)
		if err != nil {
			return err
		}
		defer rl.Close()
		modules = append(modules, rl)
	}

	var status *display.Module
	if !opts.quiet {
		status = newStatus(stdout, sc.Name, fps, fc, sched)
		modules = append(modules, status)
	}

	e, err := engine.New(engine.Options{FrameRate: fps, MaxFrames: frames}, modules...)
	if err != nil {
		return err
	}
	err = e.Run(ctx)
	if status != nil {
		if derr := status.Draw(); derr != nil {
			logger.Warn("could not draw status", slog.Any("error", derr))
		}
	}

	if errors.Is(err, engine.ErrInterrupted) {
		logger.Info("interrupted", slog.Int("frame", e.Frame()))
		return nil
	}
	if err != nil {
		return err
	}

	logger.Debug("scene finished", slog.Int("frame", e.Frame()), slog.Int("remaining", sched.Len()))
	return nil
}

// newStatus redraws every frame on a terminal and once per second
// anywhere else.
func newStatus(w io.Writer, title string, fps int, fc *tick.FrameClock, sched *tick.Scheduler) *display.Module {
	if f, ok := w.(console.File); ok {
		if d, err := display.New(f); err == nil {
			return display.NewModule(d, title, fc, sched)
		}
	}

	m := display.NewModule(display.NewWriter(w, 0), title, fc, sched)
	m.Every = fps
	return m
}
