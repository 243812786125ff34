package game

import "time"

// Timer is a pending callback that can be cancelled.
type Timer interface {
	Stop() bool
}

// Clock schedules callbacks. RealClock is used outside tests.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// RealClock schedules with time.AfterFunc.
type RealClock struct{}

// AfterFunc calls f in its own goroutine after d.
func (RealClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
