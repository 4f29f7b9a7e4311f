package script

import (
	"github.com/dop251/goja"

	"github.com/webriots/tick"
)

type binding = func(goja.FunctionCall) goja.Value

func newObject(vm *goja.Runtime, methods map[string]binding) *goja.Object {
	o := vm.NewObject()
	for name, fn := range methods {
		// Set only fails on frozen or exotic objects.
		_ = o.Set(name, fn)
	}
	return o
}

// newWaitObject exposes w to a script. Suspending calls do not return
// to the script until the coroutine is advanced again.
func newWaitObject(vm *goja.Runtime, w *tick.Waiter) *goja.Object {
	return newObject(vm, map[string]binding{
		"nextFrame": func(goja.FunctionCall) goja.Value {
			w.NextFrame()
			return goja.Undefined()
		},
		"forFrames": func(call goja.FunctionCall) goja.Value {
			w.ForFrames(int(call.Argument(0).ToInteger()))
			return goja.Undefined()
		},
		"forSeconds": func(call goja.FunctionCall) goja.Value {
			w.ForSeconds(call.Argument(0).ToFloat())
			return goja.Undefined()
		},
		"done": func(goja.FunctionCall) goja.Value {
			w.Done()
			return goja.Undefined()
		},
	})
}

func newGameObject(vm *goja.Runtime, clock *tick.FrameClock) *goja.Object {
	return newObject(vm, map[string]binding{
		"frame": func(goja.FunctionCall) goja.Value {
			if clock == nil {
				return vm.ToValue(0)
			}
			return vm.ToValue(clock.Frame())
		},
		"time": func(goja.FunctionCall) goja.Value {
			if clock == nil {
				return vm.ToValue(0.0)
			}
			return vm.ToValue(clock.Now().Seconds())
		},
		"delta": func(goja.FunctionCall) goja.Value {
			if clock == nil {
				return vm.ToValue(0.0)
			}
			return vm.ToValue(clock.Delta().Seconds())
		},
	})
}
