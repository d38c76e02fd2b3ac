//go:build linux

package input

import (
	"fmt"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

// RealReader wires GPIO edge events into an Events instance using the
// Linux GPIO character device.
type RealReader struct {
	chip      *gpiocdev.Chip
	tiltLine  *gpiocdev.Line
	buttonPin *gpiocdev.Line
}

// NewRealReader requests the tilt and button lines with edge detection.
// Edge handlers run on the gpiocdev event goroutine and only store into
// the Events cells. Press timestamps come from now, which must be the
// same time source the poll loop measures hold durations against; a nil
// now falls back to time.Now.
func NewRealReader(pinTilt, pinButton int, events *Events, now func() time.Time) (*RealReader, error) {
	if now == nil {
		now = time.Now
	}
	chip, err := gpiocdev.NewChip("gpiochip0")
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	// Tilt idles high (pulled up); any edge counts as activity.
	tiltLine, err := chip.RequestLine(pinTilt,
		gpiocdev.AsInput,
		gpiocdev.WithPullUp,
		gpiocdev.WithBothEdges,
		gpiocdev.WithEventHandler(func(gpiocdev.LineEvent) {
			events.Tilt()
		}))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request tilt pin %d: %w", pinTilt, err)
	}

	// Button is active-high: rising edge starts a press, falling edge
	// ends it. Hold detection happens in the main loop, not here.
	buttonLine, err := chip.RequestLine(pinButton,
		gpiocdev.AsInput,
		gpiocdev.WithPullDown,
		gpiocdev.WithBothEdges,
		gpiocdev.WithEventHandler(func(evt gpiocdev.LineEvent) {
			if evt.Type == gpiocdev.LineEventRisingEdge {
				events.Press(now())
			} else {
				events.Release()
			}
		}))
	if err != nil {
		tiltLine.Close()
		chip.Close()
		return nil, fmt.Errorf("request button pin %d: %w", pinButton, err)
	}

	return &RealReader{
		chip:      chip,
		tiltLine:  tiltLine,
		buttonPin: buttonLine,
	}, nil
}

// ButtonPressed reads the live button level (active-high).
func (r *RealReader) ButtonPressed() (bool, error) {
	v, err := r.buttonPin.Value()
	if err != nil {
		return false, fmt.Errorf("read button pin: %w", err)
	}
	return v != 0, nil
}

// Close releases GPIO resources, reconfiguring lines to input with their
// boot-default bias first so external modules see a clean state across
// restarts.
func (r *RealReader) Close() error {
	var errs []error

	if r.tiltLine != nil {
		if err := r.tiltLine.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullUp); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure tilt pin: %w", err))
		}
		if err := r.tiltLine.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close tilt pin: %w", err))
		}
	}
	if r.buttonPin != nil {
		if err := r.buttonPin.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure button pin: %w", err))
		}
		if err := r.buttonPin.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close button pin: %w", err))
		}
	}
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
