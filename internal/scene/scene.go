// Package scene loads descriptions of scripted coroutine scenes and
// spawns them on a scheduler.
package scene

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/webriots/tick"
	"github.com/webriots/tick/internal/script"
)

const DefaultFrameRate = 60

// Kind selects how a task's script is driven.
type Kind string

const (
	// KindRun calls the script once with a wait object.
	KindRun Kind = "run"
	// KindRunFor calls the script every frame until its duration has passed.
	KindRunFor Kind = "run_for"
)

var ErrInvalid = errors.New("invalid scene")

// Scene is a named set of tasks and the frame loop settings to run
// them with.
type Scene struct {
	Name      string `yaml:"name"`
	FrameRate int    `yaml:"frame_rate"`
	MaxFrames int    `yaml:"max_frames"`
	Tasks     []Task `yaml:"tasks"`
}

// Task is one coroutine of a scene. Script holds the function source
// inline; ScriptFile names a file relative to the scene file instead.
type Task struct {
	Name       string   `yaml:"name"`
	Kind       Kind     `yaml:"kind"`
	Duration   Duration `yaml:"duration"`
	Script     string   `yaml:"script"`
	ScriptFile string   `yaml:"script_file"`
}

// FrameDuration is the time between two frames at the scene's rate.
func (s *Scene) FrameDuration() time.Duration {
	return time.Second / time.Duration(s.FrameRate)
}

// Load reads a scene from a .yaml, .yml or .hcl file, resolves
// script files and validates the result.
func Load(filename string) (*Scene, error) {
	src, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("could not read scene: %w", err)
	}

	sc := &Scene{FrameRate: DefaultFrameRate}
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".yaml", ".yml":
		err = decodeYAML(src, sc)
	case ".hcl":
		err = decodeHCL(filename, src, sc)
	default:
		err = fmt.Errorf("unsupported scene format %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("could not decode scene %s: %w", filename, err)
	}

	if err := sc.resolveScripts(filepath.Dir(filename)); err != nil {
		return nil, err
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return sc, nil
}

// Validate reports the first problem found in the scene.
func (s *Scene) Validate() error {
	if s.FrameRate <= 0 {
		return fmt.Errorf("%w: frame_rate must be positive, got %d", ErrInvalid, s.FrameRate)
	}
	if s.FrameRate > int(time.Second) {
		return fmt.Errorf("%w: frame_rate must be at most %d, got %d", ErrInvalid, int(time.Second), s.FrameRate)
	}
	if s.MaxFrames < 0 {
		return fmt.Errorf("%w: max_frames must not be negative, got %d", ErrInvalid, s.MaxFrames)
	}

	seen := make(map[string]bool, len(s.Tasks))
	for i, t := range s.Tasks {
		if t.Name == "" {
			return fmt.Errorf("%w: task %d has no name", ErrInvalid, i)
		}
		if seen[t.Name] {
			return fmt.Errorf("%w: duplicate task %q", ErrInvalid, t.Name)
		}
		seen[t.Name] = true

		if t.Duration < 0 {
			return fmt.Errorf("%w: task %q has a negative duration", ErrInvalid, t.Name)
		}
		switch t.Kind {
		case KindRun:
		case KindRunFor:
			if t.Duration <= 0 {
				return fmt.Errorf("%w: task %q needs a positive duration", ErrInvalid, t.Name)
			}
		default:
			return fmt.Errorf("%w: task %q has unknown kind %q", ErrInvalid, t.Name, t.Kind)
		}
		if strings.TrimSpace(t.Script) == "" {
			return fmt.Errorf("%w: task %q has no script", ErrInvalid, t.Name)
		}
	}
	return nil
}

// Spawn compiles every task and schedules it on sched. Nothing is
// scheduled when any script fails to compile.
func (s *Scene) Spawn(sched *tick.Scheduler, env script.Env) error {
	programs := make([]*script.Program, len(s.Tasks))
	for i, t := range s.Tasks {
		p, err := script.Compile(t.Name, t.Script)
		if err != nil {
			return err
		}
		programs[i] = p
	}

	for i, t := range s.Tasks {
		switch t.Kind {
		case KindRun:
			sched.Run(t.Name, programs[i].Step(env))
		case KindRunFor:
			sched.RunFor(t.Name, time.Duration(t.Duration), programs[i].TimedStep(env))
		}
	}
	return nil
}

func (s *Scene) resolveScripts(dir string) error {
	for i := range s.Tasks {
		t := &s.Tasks[i]
		if t.ScriptFile == "" {
			continue
		}
		if t.Script != "" {
			return fmt.Errorf("%w: task %q sets both script and script_file", ErrInvalid, t.Name)
		}
		path := t.ScriptFile
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		src, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("could not read script of task %q: %w", t.Name, err)
		}
		t.Script = string(src)
	}
	return nil
}
