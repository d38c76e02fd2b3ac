//go:build !linux

package led

import "errors"

// RealStrip is not available on non-Linux platforms.
type RealStrip struct{}

// NewRealStrip returns an error on non-Linux platforms.
func NewRealStrip(dev string, count int, brightness uint8) (*RealStrip, error) {
	return nil, errors.New("led: not supported on this platform (requires Linux)")
}

// Size is not implemented on non-Linux platforms.
func (s *RealStrip) Size() int { return 0 }

// SetPixel is not implemented on non-Linux platforms.
func (s *RealStrip) SetPixel(i int, c Color) {}

// Show is not implemented on non-Linux platforms.
func (s *RealStrip) Show() error {
	return errors.New("led: not supported")
}

// Close is not implemented on non-Linux platforms.
func (s *RealStrip) Close() error {
	return nil
}
