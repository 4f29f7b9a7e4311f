package tick

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

// joinedError unwraps to several errors.
type joinedError struct {
	errs []error
}

func (j *joinedError) Error() string {
	return "several errors"
}

func (j *joinedError) Unwrap() []error {
	return j.errs
}

// loopError unwraps to itself.
type loopError struct {
	err error
	msg string
}

func (l *loopError) Error() string {
	return l.msg
}

func (l *loopError) Unwrap() error {
	return l.err
}

func TestPanicErrorDebugStringJoined(t *testing.T) {
	r := require.New(t)

	pErr := &PanicError{
		value: &joinedError{errs: []error{
			errors.New("frame 12 failed"),
			errors.New("frame 13 failed"),
		}},
		stack: []byte("step stack"),
	}

	debugStr := pErr.DebugString()
	r.Contains(debugStr, "several errors")
	r.Contains(debugStr, "frame 12 failed")
	r.Contains(debugStr, "frame 13 failed")
	r.Contains(debugStr, "step stack")
}

func TestPanicErrorDebugStringCycle(t *testing.T) {
	r := require.New(t)

	loop := &loopError{msg: "loop error"}
	loop.err = loop

	pErr := &PanicError{
		value: loop,
		stack: []byte("step stack"),
	}

	debugStr := pErr.DebugString()
	r.Contains(debugStr, "loop error")
	r.Contains(debugStr, "step stack")
}

func TestPanicErrorNonError(t *testing.T) {
	r := require.New(t)

	pErr := &PanicError{
		value: 42,
		stack: []byte("step stack"),
	}

	r.Nil(pErr.Unwrap())
	r.Equal("42", pErr.Error())
	r.Equal(42, pErr.Value())
}

func TestPanicErrorMethods(t *testing.T) {
	r := require.New(t)

	errValue := fmt.Errorf("bad waiter")
	pErr := newPanicError(errValue)

	r.Equal("bad waiter", pErr.Error())
	r.Contains(pErr.ErrorWithStack(), "bad waiter")
	r.Contains(pErr.ErrorWithStack(), "panic_test.go")
	r.Equal(errValue, pErr.Unwrap())
	r.ErrorIs(pErr, errValue)
}

func TestAsPanicError(t *testing.T) {
	r := require.New(t)

	pErr := newPanicError("first")
	r.Same(pErr, AsPanicError(pErr))

	wrapped := AsPanicError("second")
	r.Equal("second", wrapped.Value())
	r.Contains(wrapped.ErrorWithStack(), "TestAsPanicError")
}
