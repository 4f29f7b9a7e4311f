// Package tick provides frame-scheduled coroutines for game loops,
// letting per-frame logic be written as straight-line functions that
// suspend themselves until a later frame instead of as hand-rolled
// state machines.
//
// A coroutine is created with New from a Step function. Nothing runs
// at construction; each call to Next resumes the step function from
// its last suspension point and runs it until it asks the Waiter to
// suspend (NextFrame, ForFrames, ForDuration) or until it returns. The
// Wait describing the suspension is returned to the caller, which
// decides when the next frame happens.
//
// RunFor builds a coroutine that calls a TimedStep once per frame with
// the time elapsed since its first frame, until that time exceeds a
// duration. Time is read from an explicit Clock, and FrameClock
// provides one driven by frame ticks.
//
// A Scheduler owns a set of coroutines, counts their waits down as
// frames pass and advances the ones that are ready, dropping those
// that finish or fail.
//
// Step functions run on a separate stack, but never concurrently with
// their caller: exactly one of the two is running at any time. Panics
// inside a step function are wrapped with their stack trace and
// re-raised in the goroutine that called Next.
package tick
