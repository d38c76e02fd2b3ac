// Package clock provides wall-clock time once NTP sync succeeds, degrading
// to device-relative time when it does not. Sync is attempted a bounded
// number of times at boot and never blocks the device from starting.
package clock

import (
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/beevik/ntp"
)

// DefaultServer is the NTP pool queried when none is configured.
const DefaultServer = "pool.ntp.org"

// Clock returns the current time, offset-corrected after a successful
// sync. Now is the daemon's single time base and is read from the GPIO
// event goroutine as well as the poll loop, so the offset cells are
// atomic even though Sync writes them only once at boot.
type Clock struct {
	offsetNanos atomic.Int64
	synced      atomic.Bool

	// query returns the clock offset reported by the server.
	// Replaceable in tests.
	query func(server string) (time.Duration, error)
	sleep func(time.Duration)
}

// Option configures a Clock.
type Option func(*Clock)

// WithQuery replaces the NTP query function.
func WithQuery(f func(server string) (time.Duration, error)) Option {
	return func(c *Clock) { c.query = f }
}

// WithSleep replaces the inter-attempt delay function.
func WithSleep(f func(time.Duration)) Option {
	return func(c *Clock) { c.sleep = f }
}

// New creates an unsynced Clock.
func New(opts ...Option) *Clock {
	c := &Clock{
		query: ntpOffset,
		sleep: time.Sleep,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func ntpOffset(server string) (time.Duration, error) {
	resp, err := ntp.Query(server)
	if err != nil {
		return 0, err
	}
	if err := resp.Validate(); err != nil {
		return 0, fmt.Errorf("invalid ntp response: %w", err)
	}
	return resp.ClockOffset, nil
}

// Sync queries the server up to attempts times, waiting delay between
// failures. On success the offset is stored and Now() becomes wall-clock
// accurate. On exhaustion the clock stays device-relative and an error is
// returned; the caller signals the failure visually and proceeds.
func (c *Clock) Sync(server string, attempts int, delay time.Duration) error {
	if server == "" {
		server = DefaultServer
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		offset, err := c.query(server)
		if err == nil {
			c.offsetNanos.Store(int64(offset))
			c.synced.Store(true)
			log.Printf("clock: synced to %s (offset %v)", server, offset)
			return nil
		}
		lastErr = err
		log.Printf("clock: sync attempt %d/%d failed: %v", i+1, attempts, err)
		if i < attempts-1 {
			c.sleep(delay)
		}
	}
	return fmt.Errorf("ntp sync exhausted after %d attempts: %w", attempts, lastErr)
}

// Now returns the offset-corrected current time. Monotonic non-decreasing:
// the offset is fixed after boot, so Now inherits the system clock's
// monotonic reading.
func (c *Clock) Now() time.Time {
	return time.Now().Add(time.Duration(c.offsetNanos.Load()))
}

// Synced reports whether an NTP sync has succeeded.
func (c *Clock) Synced() bool {
	return c.synced.Load()
}
