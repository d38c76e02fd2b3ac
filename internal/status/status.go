// Package status provides a thread-safe status tracker for the pill-ring
// daemon. It is written by the poll loop and read by HTTP handlers.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/pill-ring/internal/dose"
)

// Config contains daemon configuration for display.
type Config struct {
	PollMs      int64
	HoldMs      int64
	WakeMs      int64
	SleepMs     int64
	HeartbeatMs int64
	RingSize    int
	Broker      string
	HTTPAddr    string
	DBPath      string
	NTPServer   string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	Mode          dose.Mode
	Segments      int
	LastDose      time.Time
	Interval      time.Duration
	Awake         bool
	Counts        dose.EventCounts
	TimeSynced    bool
	MQTTConnected bool
	StartTime     time.Time
	Now           time.Time
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// SinceLastDose returns the elapsed time since the last confirmed dose.
func (s Snapshot) SinceLastDose() time.Duration {
	return s.Now.Sub(s.LastDose)
}

// Remaining returns the countdown time left, zero once the dose is due.
func (s Snapshot) Remaining() time.Duration {
	r := s.Interval - s.SinceLastDose()
	if r < 0 {
		return 0
	}
	return r
}

// IntervalDHM decomposes the interval into whole days, hours and minutes
// for the config form.
func (s Snapshot) IntervalDHM() (days, hours, minutes int) {
	total := int(s.Interval / time.Second)
	return total / 86400, total % 86400 / 3600, total % 3600 / 60
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	now  func() time.Time
	snap Snapshot
}

// NewTracker creates a Tracker. now supplies the timestamp stamped onto
// snapshots (the synced clock in production, a fixed func in tests).
func NewTracker(startTime time.Time, cfg Config, now func() time.Time) *Tracker {
	if now == nil {
		now = time.Now
	}
	return &Tracker{
		now: now,
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update sets the derived display state and timer scalars.
// Called from the poll loop on every tick.
func (t *Tracker) Update(st dose.DisplayState, lastDose time.Time, interval time.Duration, awake bool, counts dose.EventCounts) {
	t.mu.Lock()
	t.snap.Mode = st.Mode
	t.snap.Segments = st.Segments
	t.snap.LastDose = lastDose
	t.snap.Interval = interval
	t.snap.Awake = awake
	t.snap.Counts = counts
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetTimeSynced records whether NTP sync succeeded at boot.
func (t *Tracker) SetTimeSynced(synced bool) {
	t.mu.Lock()
	t.snap.TimeSynced = synced
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = t.now()
	return s
}
