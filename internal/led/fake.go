package led

// FakeStrip records every frame pushed by Show for test assertions.
type FakeStrip struct {
	pixels []Color

	// Frames contains a copy of the pixel buffer at each Show call.
	Frames [][]Color

	// ShowError, if set, will be returned by Show.
	ShowError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeStrip creates a FakeStrip with count pixels.
func NewFakeStrip(count int) *FakeStrip {
	return &FakeStrip{pixels: make([]Color, count)}
}

// Size returns the number of pixels.
func (f *FakeStrip) Size() int {
	return len(f.pixels)
}

// SetPixel sets the buffered color of pixel i.
func (f *FakeStrip) SetPixel(i int, c Color) {
	if i < 0 || i >= len(f.pixels) {
		return
	}
	f.pixels[i] = c
}

// Show records a copy of the current buffer.
func (f *FakeStrip) Show() error {
	if f.ShowError != nil {
		return f.ShowError
	}
	frame := make([]Color, len(f.pixels))
	copy(frame, f.pixels)
	f.Frames = append(f.Frames, frame)
	return nil
}

// LastFrame returns the most recently shown frame, or nil.
func (f *FakeStrip) LastFrame() []Color {
	if len(f.Frames) == 0 {
		return nil
	}
	return f.Frames[len(f.Frames)-1]
}

// Close marks the strip as closed.
func (f *FakeStrip) Close() error {
	f.Closed = true
	return nil
}

// Reset clears recorded frames and the pixel buffer.
func (f *FakeStrip) Reset() {
	f.Frames = nil
	f.Closed = false
	for i := range f.pixels {
		f.pixels[i] = Off
	}
}
