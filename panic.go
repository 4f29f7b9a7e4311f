package tick

import (
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
)

// PanicError carries a value a step function panicked with, together
// with the stack of the coroutine at the time of the panic. It is
// re-raised with panic in the goroutine that advanced or stopped the
// coroutine.
type PanicError struct {
	value any
	stack []byte
}

func (p *PanicError) Error() string {
	return fmt.Sprintf("%v", p.value)
}

// Value returns the original value passed to panic.
func (p *PanicError) Value() any {
	return p.value
}

func (p *PanicError) ErrorWithStack() string {
	return fmt.Sprintf("%v\n\n%s", p.value, p.stack)
}

func (p *PanicError) Unwrap() error {
	err, ok := p.value.(error)
	if !ok {
		return nil
	}
	return err
}

// DebugString renders the panic and every error it wraps, including
// the stacks of nested coroutine panics.
func (p *PanicError) DebugString() string {
	var sb strings.Builder
	seen := make(map[error]bool)

	var unwrap func(error)
	unwrap = func(e error) {
		if e == nil || seen[e] {
			return
		}
		seen[e] = true

		if p, ok := e.(*PanicError); ok {
			sb.WriteString(p.ErrorWithStack())
		} else {
			sb.WriteString(e.Error())
		}

		if unwrapper, ok := e.(interface{ Unwrap() []error }); ok {
			for _, ue := range unwrapper.Unwrap() {
				unwrap(ue)
			}
		} else if ue := errors.Unwrap(e); ue != nil {
			unwrap(ue)
		}
	}

	unwrap(p)
	return sb.String()
}

func newPanicError(v any) *PanicError {
	return &PanicError{
		value: v,
		stack: debug.Stack(),
	}
}

// AsPanicError returns v unchanged when it is a *PanicError and wraps
// it with the current stack otherwise. v is usually the result of
// recover.
func AsPanicError(v any) *PanicError {
	if p, ok := v.(*PanicError); ok {
		return p
	}
	return newPanicError(v)
}
