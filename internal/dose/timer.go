package dose

import (
	"errors"
	"time"
)

// Timer tracks time since the last confirmed dose and derives the display
// state each tick. There is no stored mode: everything is recomputed from
// the timestamps, the configured interval and two one-shot flags.
type Timer struct {
	lastDose     time.Time
	interval     time.Duration
	segment      time.Duration // interval / ringSize
	lastActivity time.Time

	// pendingWakeup forces one bright cycle after a dose was confirmed
	// while the display was asleep.
	pendingWakeup bool
	// restartAnim requests the one-shot countdown-restart animation.
	restartAnim bool
	// wasCountdown tracks the countdown->due transition for DOSE_DUE.
	wasCountdown bool

	ringSize    int
	wakeWindow  time.Duration
	sleepWindow time.Duration

	startTime     time.Time
	lastHeartbeat time.Time
	counts        EventCounts
}

// ErrInvalidInterval is returned when a non-positive interval is rejected.
var ErrInvalidInterval = errors.New("dose: interval must be positive")

// NewTimer creates a Timer. lastDose is the restored last-dose timestamp
// (boot time if none was persisted); now is used as the activity baseline
// and for uptime tracking.
func NewTimer(cfg Config, lastDose, now time.Time) *Timer {
	cfg = cfg.withDefaults()
	t := &Timer{
		lastDose:      lastDose,
		interval:      cfg.Interval,
		lastActivity:  now,
		ringSize:      cfg.RingSize,
		wakeWindow:    cfg.WakeWindow,
		sleepWindow:   cfg.SleepWindow,
		startTime:     now,
		lastHeartbeat: now,
		wasCountdown:  now.Sub(lastDose) < cfg.Interval,
	}
	t.segment = segmentFor(t.interval, t.ringSize)
	return t
}

func segmentFor(interval time.Duration, ringSize int) time.Duration {
	seg := interval / time.Duration(ringSize)
	if seg <= 0 {
		seg = 1
	}
	return seg
}

// ConfirmDose records a confirmed dose at now, restarting the countdown.
// If the display was not awake at the moment of confirmation the pending
// wakeup flag is set so the device still flashes bright instead of
// silently resuming its dim decay. Returns the event to persist/publish.
func (t *Timer) ConfirmDose(now time.Time) Event {
	awake := now.Sub(t.lastActivity) <= t.wakeWindow
	t.lastDose = now
	t.lastActivity = now
	if !awake {
		t.pendingWakeup = true
	}
	t.restartAnim = true
	t.wasCountdown = true
	t.counts.Doses++
	return Event{
		Timestamp: now,
		Type:      EventDoseTaken,
		LastDose:  t.lastDose,
		Interval:  t.interval,
	}
}

// Activity records a tilt at now, refreshing the awake window. It does not
// touch the dose timestamp.
func (t *Timer) Activity(now time.Time) {
	t.lastActivity = now
	t.counts.Tilts++
}

// SetInterval swaps in a new dose interval and recomputes the per-segment
// duration. Non-positive intervals are rejected and the prior value stays
// in effect.
func (t *Timer) SetInterval(d time.Duration, now time.Time) (Event, error) {
	if d <= 0 {
		return Event{}, ErrInvalidInterval
	}
	t.interval = d
	t.segment = segmentFor(d, t.ringSize)
	t.counts.IntervalChanges++
	return Event{
		Timestamp: now,
		Type:      EventIntervalChanged,
		LastDose:  t.lastDose,
		Interval:  t.interval,
	}, nil
}

// Tick derives the display state for now and returns any events emitted on
// this tick (currently only DOSE_DUE, once per countdown expiry).
func (t *Timer) Tick(now time.Time) (DisplayState, []Event) {
	var events []Event

	inCountdown := t.InCountdown(now)
	if t.wasCountdown && !inCountdown {
		t.wasCountdown = false
		t.counts.Dues++
		events = append(events, Event{
			Timestamp: now,
			Type:      EventDoseDue,
			LastDose:  t.lastDose,
			Interval:  t.interval,
		})
	}

	if t.restartAnim {
		t.restartAnim = false
		return DisplayState{Mode: ModeCountdownInit, Segments: t.ringSize}, events
	}

	idle := now.Sub(t.lastActivity)
	awake := idle <= t.wakeWindow
	dimmed := idle <= t.sleepWindow

	if inCountdown {
		frac := t.Fraction(now)
		switch {
		case awake:
			return DisplayState{Mode: ModeCountdownBright, Segments: frac}, events
		case dimmed:
			return DisplayState{Mode: ModeCountdownDim, Segments: frac}, events
		default:
			return DisplayState{Mode: ModeOff}, events
		}
	}

	// Dose is due or overdue.
	if awake {
		t.pendingWakeup = false
		return DisplayState{Mode: ModeTakeBright, Segments: t.ringSize}, events
	}
	if t.pendingWakeup {
		// Forced wake: reset the activity baseline so the next tick
		// evaluates as awake, then fall through to dim for this one.
		t.pendingWakeup = false
		t.lastActivity = now
	}
	return DisplayState{Mode: ModeTakeDim, Segments: t.ringSize}, events
}

// InCountdown reports whether the next dose is not yet due at now.
func (t *Timer) InCountdown(now time.Time) bool {
	return now.Sub(t.lastDose) < t.interval
}

// Fraction returns the number of ring segments representing the remaining
// countdown time: ceil(remaining / segment), clamped to [0, ringSize].
// It is ringSize at elapsed == 0 and 0 once the interval has elapsed.
func (t *Timer) Fraction(now time.Time) int {
	remaining := t.interval - now.Sub(t.lastDose)
	if remaining <= 0 {
		return 0
	}
	frac := int((remaining + t.segment - 1) / t.segment)
	if frac > t.ringSize {
		frac = t.ringSize
	}
	return frac
}

// Awake reports whether the display should render at full brightness.
func (t *Timer) Awake(now time.Time) bool {
	return now.Sub(t.lastActivity) <= t.wakeWindow
}

// LastDose returns the last confirmed dose timestamp.
func (t *Timer) LastDose() time.Time { return t.lastDose }

// Interval returns the configured dose interval.
func (t *Timer) Interval() time.Duration { return t.interval }

// Segment returns the derived per-segment duration.
func (t *Timer) Segment() time.Duration { return t.segment }

// RingSize returns the configured ring size.
func (t *Timer) RingSize() int { return t.ringSize }

// Counts returns a copy of the event counters.
func (t *Timer) Counts() EventCounts { return t.counts }

// CheckHeartbeat returns heartbeat data if the interval has elapsed since
// the last heartbeat (or startup). Returns nil if the interval has not
// elapsed or if interval is <= 0 (disabled).
func (t *Timer) CheckHeartbeat(now time.Time, interval time.Duration) *HeartbeatData {
	if interval <= 0 {
		return nil
	}
	if now.Sub(t.lastHeartbeat) < interval {
		return nil
	}
	t.lastHeartbeat = now
	return &HeartbeatData{
		Timestamp: now,
		Uptime:    now.Sub(t.startTime),
		Counts:    t.counts,
	}
}
