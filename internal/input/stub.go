//go:build !linux

package input

import (
	"errors"
	"time"
)

// RealReader is not available on non-Linux platforms.
type RealReader struct{}

// NewRealReader returns an error on non-Linux platforms.
func NewRealReader(pinTilt, pinButton int, events *Events, now func() time.Time) (*RealReader, error) {
	return nil, errors.New("input: not supported on this platform (requires Linux)")
}

// ButtonPressed is not implemented on non-Linux platforms.
func (r *RealReader) ButtonPressed() (bool, error) {
	return false, errors.New("input: not supported")
}

// Close is not implemented on non-Linux platforms.
func (r *RealReader) Close() error {
	return nil
}
