// Package script runs JavaScript functions as tick step functions.
//
// A script is a single function expression. Run scripts receive a
// wait object:
//
//	function (wait) {
//		for (let i = 0; i < 3; i++) {
//			log("blink", i)
//			wait.forSeconds(0.5)
//		}
//	}
//
// while run_for scripts are called once per frame with the elapsed and
// total time in seconds:
//
//	function (elapsed, duration) {
//		log("fade", (elapsed / duration).toFixed(2))
//	}
//
// Every coroutine gets its own goja.Runtime, since a runtime cannot be
// shared between suspended call stacks.
package script

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dop251/goja"

	"github.com/webriots/tick"
)

// ErrNotFunction is returned when a script does not evaluate to a
// function.
var ErrNotFunction = errors.New("script does not evaluate to a function")

// Env is what scripts can see of the game.
type Env struct {
	// Clock backs game.frame(), game.time() and game.delta(). May be nil.
	Clock *tick.FrameClock
	// Logger receives log(...) calls. May be nil.
	Logger *slog.Logger
}

// Program is a compiled script.
type Program struct {
	name string
	prg  *goja.Program
}

// Compile parses source as a function expression.
func Compile(name, source string) (*Program, error) {
	prg, err := goja.Compile(name, "("+source+"\n)", false)
	if err != nil {
		return nil, fmt.Errorf("compile script %s: %w", name, err)
	}
	return &Program{name: name, prg: prg}, nil
}

// Name is the name the program was compiled with.
func (p *Program) Name() string {
	return p.name
}

// Step returns a step function that calls the script with a wait
// object. Script exceptions are returned as errors wrapping
// *goja.Exception.
func (p *Program) Step(env Env) tick.Step {
	return func(w *tick.Waiter) error {
		vm, fn, err := p.instantiate(env)
		if err != nil {
			return err
		}
		_, err = fn(goja.Undefined(), newWaitObject(vm, w))
		return p.wrap(err)
	}
}

// TimedStep returns a timed step function that calls the script with
// the elapsed and total durations in seconds. The runtime is created
// on the first call and reused for the following frames.
func (p *Program) TimedStep(env Env) tick.TimedStep {
	var (
		vm *goja.Runtime
		fn goja.Callable
	)
	return func(elapsed, duration time.Duration) error {
		if fn == nil {
			var err error
			if vm, fn, err = p.instantiate(env); err != nil {
				return err
			}
		}
		_, err := fn(goja.Undefined(), vm.ToValue(elapsed.Seconds()), vm.ToValue(duration.Seconds()))
		return p.wrap(err)
	}
}

func (p *Program) instantiate(env Env) (*goja.Runtime, goja.Callable, error) {
	vm := goja.New()
	vm.SetFieldNameMapper(goja.UncapFieldNameMapper())

	if err := vm.Set("game", newGameObject(vm, env.Clock)); err != nil {
		return nil, nil, fmt.Errorf("script %s: %w", p.name, err)
	}
	if err := vm.Set("log", p.logFunc(env.Logger)); err != nil {
		return nil, nil, fmt.Errorf("script %s: %w", p.name, err)
	}

	v, err := vm.RunProgram(p.prg)
	if err != nil {
		return nil, nil, p.wrap(err)
	}
	fn, ok := goja.AssertFunction(v)
	if !ok {
		return nil, nil, fmt.Errorf("script %s: %w", p.name, ErrNotFunction)
	}
	return vm, fn, nil
}

func (p *Program) wrap(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("script %s: %w", p.name, err)
}

func (p *Program) logFunc(logger *slog.Logger) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		if logger == nil {
			return goja.Undefined()
		}
		parts := make([]string, len(call.Arguments))
		for i, arg := range call.Arguments {
			parts[i] = arg.String()
		}
		logger.Info(strings.Join(parts, " "), slog.String("script", p.name))
		return goja.Undefined()
	}
}
