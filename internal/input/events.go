package input

import (
	"sync/atomic"
	"time"
)

// Events is the only state shared between the GPIO event context and the
// main loop. Producers perform single atomic stores; the consumer performs
// atomic read-and-clear, so a flag set between any two loop instructions is
// either seen this tick or the next, never lost.
type Events struct {
	tilt        atomic.Bool
	pressActive atomic.Bool
	pressStart  atomic.Int64 // unix nanos of the rising edge
}

// Tilt records a tilt edge. Producer side.
func (e *Events) Tilt() {
	e.tilt.Store(true)
}

// TakeTilt consumes the tilt flag, returning whether it was set.
// Consumer side only.
func (e *Events) TakeTilt() bool {
	return e.tilt.Swap(false)
}

// Press records a button rising edge at now. Producer side.
func (e *Events) Press(now time.Time) {
	e.pressStart.Store(now.UnixNano())
	e.pressActive.Store(true)
}

// Release records a button falling edge. A release before the hold
// threshold makes the press a no-op. Producer side.
func (e *Events) Release() {
	e.pressActive.Store(false)
}

// PressedSince returns the rising-edge time of an active press, if any.
func (e *Events) PressedSince() (time.Time, bool) {
	if !e.pressActive.Load() {
		return time.Time{}, false
	}
	return time.Unix(0, e.pressStart.Load()), true
}

// ClearPress drops the active press. The loop calls this immediately after
// firing a dose confirmation so a continued hold cannot refire.
func (e *Events) ClearPress() {
	e.pressActive.Store(false)
}
