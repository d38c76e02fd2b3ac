// Package dose contains the pure dose-timing state machine.
// This package has NO external dependencies (no GPIO, LEDs, storage, or
// time.Sleep). Time is always injectable via time.Time parameters.
package dose

import "time"

// Mode is the discrete display mode derived from the timer state.
type Mode string

const (
	// ModeOff means the ring is dark (countdown running, device asleep).
	ModeOff Mode = "OFF"
	// ModeCountdownBright shows the remaining-time arc at full brightness.
	ModeCountdownBright Mode = "COUNTDOWN_BRIGHT"
	// ModeCountdownDim shows the remaining-time arc dimmed.
	ModeCountdownDim Mode = "COUNTDOWN_DIM"
	// ModeCountdownInit is the one-shot animation after a confirmed dose.
	ModeCountdownInit Mode = "COUNTDOWN_INIT"
	// ModeTakeBright signals a due dose at full brightness.
	ModeTakeBright Mode = "TAKE_BRIGHT"
	// ModeTakeDim signals a due dose dimmed.
	ModeTakeDim Mode = "TAKE_DIM"

	// Network modes are rendered during boot by main, never derived by
	// the timer.
	ModeNetConnecting Mode = "NET_CONNECTING"
	ModeNetSuccess    Mode = "NET_SUCCESS"
	ModeNetFailure    Mode = "NET_FAILURE"
)

// DisplayState is the per-tick rendering request. Segments is the count of
// lit ring positions in 0..ringSize; modes that light the whole ring carry
// Segments == ringSize.
type DisplayState struct {
	Mode     Mode
	Segments int
}

// EventType identifies a timer transition for persistence/telemetry.
type EventType string

const (
	EventDoseTaken       EventType = "DOSE_TAKEN"
	EventDoseDue         EventType = "DOSE_DUE"
	EventIntervalChanged EventType = "INTERVAL_CHANGED"
)

// Event is a timer transition to be persisted and/or published.
type Event struct {
	Timestamp time.Time
	Type      EventType
	LastDose  time.Time
	Interval  time.Duration
}

// EventCounts tracks event totals since startup.
type EventCounts struct {
	Doses           int
	Dues            int
	Tilts           int
	IntervalChanges int
}

// HeartbeatData contains information for a heartbeat event.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
	Counts    EventCounts
}

// Config holds the tunable timer constants.
type Config struct {
	// Interval is the initial period between doses.
	Interval time.Duration
	// RingSize is the number of pixels on the ring.
	RingSize int
	// WakeWindow is how long after activity the display stays bright.
	WakeWindow time.Duration
	// SleepWindow is how long after activity the display stays visible
	// (dim). Beyond it the display is off. Must be >= WakeWindow.
	SleepWindow time.Duration
}

// Defaults matching the deployed device.
const (
	DefaultRingSize    = 12
	DefaultInterval    = 24 * time.Hour
	DefaultWakeWindow  = 10 * time.Second
	DefaultSleepWindow = 20 * time.Second
	DefaultHold        = 2 * time.Second
)

func (c Config) withDefaults() Config {
	if c.Interval <= 0 {
		c.Interval = DefaultInterval
	}
	if c.RingSize <= 0 {
		c.RingSize = DefaultRingSize
	}
	if c.WakeWindow <= 0 {
		c.WakeWindow = DefaultWakeWindow
	}
	if c.SleepWindow < c.WakeWindow {
		c.SleepWindow = DefaultSleepWindow
	}
	return c
}
