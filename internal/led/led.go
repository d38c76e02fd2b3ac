// Package led abstracts the addressable LED ring.
// The real implementation drives WS2812 pixels over SPI.
// The fake implementation records frames for testing.
package led

// Color is an 8-bit-per-channel RGB color, before the global brightness
// cap is applied.
type Color struct {
	R, G, B uint8
}

// Scale returns the color scaled by num/den per channel.
func (c Color) Scale(num, den int) Color {
	if den == 0 {
		return c
	}
	return Color{
		R: uint8(int(c.R) * num / den),
		G: uint8(int(c.G) * num / den),
		B: uint8(int(c.B) * num / den),
	}
}

// Off is the unlit pixel color.
var Off = Color{}

// Strip is the ring capability: set pixels, push the buffer to hardware.
type Strip interface {
	// Size returns the number of pixels on the ring.
	Size() int

	// SetPixel sets the buffered color of pixel i. Out-of-range indexes
	// are ignored.
	SetPixel(i int, c Color)

	// Show pushes the pixel buffer to the hardware.
	Show() error

	// Close blanks the ring and releases resources.
	Close() error
}
