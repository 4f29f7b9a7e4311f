package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/webriots/tick"
	"github.com/webriots/tick/internal/engine"
	"github.com/webriots/tick/internal/scene"
	"github.com/webriots/tick/internal/script"
)

const chmodMask fsnotify.Op = ^fsnotify.Op(0) ^ fsnotify.Chmod

// reloader watches a scene file and the script files it names. A
// changed scene is loaded on the watcher goroutine and swapped into
// the scheduler on the next PreUpdate.
type reloader struct {
	engine.BaseModule

	path    string
	sched   *tick.Scheduler
	env     script.Env
	logger  *slog.Logger
	watcher *fsnotify.Watcher
	files   map[string]bool
	scenes  chan *scene.Scene
	wg      sync.WaitGroup
}

func newReloader(path string, sc *scene.Scene, sched *tick.Scheduler, env script.Env, logger *slog.Logger) (*reloader, error) {
	path, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("cannot start watcher: %w", err)
	}

	rl := &reloader{
		path:    path,
		sched:   sched,
		env:     env,
		logger:  logger,
		watcher: watcher,
		scenes:  make(chan *scene.Scene, 1),
	}
	if err := rl.watch(sc); err != nil {
		watcher.Close()
		return nil, err
	}

	rl.wg.Add(1)
	go rl.loop()

	return rl, nil
}

func (rl *reloader) PreUpdate() error {
	select {
	case sc := <-rl.scenes:
		rl.sched.Stop()
		if err := sc.Spawn(rl.sched, rl.env); err != nil {
			rl.logger.Error("could not start reloaded scene", slog.Any("error", err))
			return nil
		}
		rl.logger.Info("scene reloaded", slog.String("scene", sc.Name), slog.Int("tasks", len(sc.Tasks)))
	default:
	}
	return nil
}

func (rl *reloader) Close() error {
	err := rl.watcher.Close()
	rl.wg.Wait()
	return err
}

func (rl *reloader) loop() {
	defer rl.wg.Done()
	for {
		select {
		case event, ok := <-rl.watcher.Events:
			if !ok {
				return
			}

			if event.Op&chmodMask == 0 {
				continue
			}

			name, err := filepath.Abs(event.Name)
			if err != nil || !rl.files[name] {
				continue
			}

			rl.logger.Debug("reloading scene", slog.String("changed", name))
			sc, err := scene.Load(rl.path)
			if err != nil {
				rl.logger.Error("could not reload scene", slog.Any("error", err))
				continue
			}
			if err := rl.watch(sc); err != nil {
				rl.logger.Error("could not watch scene", slog.Any("error", err))
			}

			select {
			case <-rl.scenes:
			default:
			}
			rl.scenes <- sc
		case err, ok := <-rl.watcher.Errors:
			if !ok {
				return
			}
			rl.logger.Error("watcher failed", slog.Any("error", err))
		}
	}
}

// watch adds the directories holding the scene file and its script
// files to the watcher and remembers which files to react to.
func (rl *reloader) watch(sc *scene.Scene) error {
	files := map[string]bool{rl.path: true}
	dir := filepath.Dir(rl.path)
	for _, t := range sc.Tasks {
		if t.ScriptFile == "" {
			continue
		}
		p := t.ScriptFile
		if !filepath.IsAbs(p) {
			p = filepath.Join(dir, p)
		}
		files[filepath.Clean(p)] = true
	}

	dirs := make(map[string]bool)
	for f := range files {
		d := filepath.Dir(f)
		if dirs[d] {
			continue
		}
		dirs[d] = true
		if err := rl.watcher.Add(d); err != nil {
			return fmt.Errorf("cannot watch %s: %w", d, err)
		}
	}

	rl.files = files
	return nil
}
