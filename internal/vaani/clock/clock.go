// Package clock abstracts time so that the confirmation timers and the
// automation scheduler can be driven by a controllable fake in tests.
//
// Every timer in Vaani goes through a Clock: confirmation expiry uses
// AfterFunc, the scheduler loop and macro delays use After.
package clock

import "time"

// Clock is the time source shared by timer-driven components.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a cancellable pending call created by AfterFunc.
type Timer interface {
	// Stop prevents the call from firing. It reports whether the call was
	// stopped before it fired.
	Stop() bool
}

// Real delegates to the standard library.
type Real struct{}

func (Real) Now() time.Time                         { return time.Now() }
func (Real) After(d time.Duration) <-chan time.Time { return time.After(d) }

// AfterFunc wraps time.AfterFunc; *time.Timer already satisfies Timer.
func (Real) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }
