package led

import (
	"errors"
	"testing"
)

func TestFakeStripRecordsFrames(t *testing.T) {
	f := NewFakeStrip(4)

	if f.LastFrame() != nil {
		t.Error("LastFrame on fresh strip: want nil")
	}

	f.SetPixel(0, Color{R: 255})
	f.SetPixel(3, Color{B: 7})
	if err := f.Show(); err != nil {
		t.Fatalf("Show: %v", err)
	}

	if len(f.Frames) != 1 {
		t.Fatalf("frames: got %d, want 1", len(f.Frames))
	}
	frame := f.LastFrame()
	if frame[0] != (Color{R: 255}) || frame[3] != (Color{B: 7}) {
		t.Errorf("frame: got %v", frame)
	}
	if frame[1] != Off || frame[2] != Off {
		t.Errorf("untouched pixels lit: %v", frame)
	}
}

func TestFakeStripFrameIsCopy(t *testing.T) {
	f := NewFakeStrip(2)
	f.SetPixel(0, Color{G: 10})
	f.Show()

	// Mutating the buffer after Show must not rewrite history.
	f.SetPixel(0, Color{G: 200})
	f.Show()

	if got := f.Frames[0][0]; got != (Color{G: 10}) {
		t.Errorf("first frame mutated: got %v, want {G:10}", got)
	}
	if got := f.Frames[1][0]; got != (Color{G: 200}) {
		t.Errorf("second frame: got %v, want {G:200}", got)
	}
}

func TestFakeStripIgnoresOutOfRange(t *testing.T) {
	f := NewFakeStrip(2)
	f.SetPixel(-1, Color{R: 1})
	f.SetPixel(2, Color{R: 1})
	f.Show()

	for i, c := range f.LastFrame() {
		if c != Off {
			t.Errorf("pixel %d lit by out-of-range write: %v", i, c)
		}
	}
}

func TestFakeStripShowError(t *testing.T) {
	f := NewFakeStrip(2)
	f.ShowError = errors.New("spi gone")

	if err := f.Show(); err == nil {
		t.Fatal("Show: expected error")
	}
	if len(f.Frames) != 0 {
		t.Errorf("frame recorded despite Show error: %d", len(f.Frames))
	}
}

func TestFakeStripReset(t *testing.T) {
	f := NewFakeStrip(2)
	f.SetPixel(0, Color{R: 9})
	f.Show()
	f.Close()

	f.Reset()
	if f.Frames != nil || f.Closed {
		t.Error("Reset left state behind")
	}
	f.Show()
	if got := f.LastFrame()[0]; got != Off {
		t.Errorf("pixel survived Reset: %v", got)
	}
}

func TestColorScale(t *testing.T) {
	c := Color{R: 255, G: 100, B: 1}

	half := c.Scale(128, 255)
	if half != (Color{R: 128, G: 50, B: 0}) {
		t.Errorf("Scale(128,255): got %v", half)
	}
	if full := c.Scale(255, 255); full != c {
		t.Errorf("Scale(255,255): got %v, want identity", full)
	}
	if zero := c.Scale(0, 255); zero != Off {
		t.Errorf("Scale(0,255): got %v, want Off", zero)
	}
	if div0 := c.Scale(1, 0); div0 != c {
		t.Errorf("Scale(1,0): got %v, want unchanged", div0)
	}
}
