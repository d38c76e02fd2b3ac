// Package input converts button and tilt signal edges into flags consumed
// by the main loop. Edge handlers run on the GPIO event goroutine and do
// nothing but store into atomic cells; the loop reads-and-clears them.
// The real implementation uses Linux GPIO character device edge events.
// The fake implementation allows testing without hardware.
package input

// Reader exposes the live button level for hold detection.
type Reader interface {
	// ButtonPressed returns the current logical button level
	// (true = pressed).
	ButtonPressed() (bool, error)

	// Close releases GPIO resources.
	Close() error
}

// Pin definitions (BCM numbering)
const (
	DefaultPinTilt   = 17 // tilt sensor, pulled up, active-low idle
	DefaultPinButton = 27 // push button, pulled down, active-high
)
