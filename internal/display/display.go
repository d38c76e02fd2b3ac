// Package display maps a derived display state onto the LED ring.
// The mapping is pure: the same state always produces the same rendering
// commands (dazzle excepted, which is fed by an injectable random source).
// Animations run to completion before the next tick is evaluated, so every
// style is kept short enough that dose-confirmation responsiveness stays
// within a few hundred milliseconds.
package display

import (
	"math/rand"
	"time"

	"github.com/sweeney/pill-ring/internal/dose"
	"github.com/sweeney/pill-ring/internal/led"
)

// Palette colors, capped globally by the strip's brightness limit.
var (
	colorCountdown = led.Color{G: 255}
	colorTake      = led.Color{R: 255}
	colorNet       = led.Color{B: 255}
)

// dimDivisor scales bright colors down for the dim tier.
const dimDivisor = 6

// Animation step delays. Their products bound the worst-case tick latency.
const (
	wipeDelay   = 15 * time.Millisecond
	chaseDelay  = 40 * time.Millisecond
	chaseCycles = 3
	dazzleDelay = 50 * time.Millisecond
	dazzleSteps = 4
)

// minDazzleChannel guarantees every dazzle pixel has at least one channel
// bright enough that nothing renders near-black.
const minDazzleChannel = 128

// Renderer draws display states on a strip.
type Renderer struct {
	strip led.Strip
	rng   *rand.Rand
	sleep func(time.Duration)
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithSleep replaces the inter-step delay function (tests pass a no-op).
func WithSleep(f func(time.Duration)) Option {
	return func(r *Renderer) { r.sleep = f }
}

// WithRand replaces the dazzle random source.
func WithRand(rng *rand.Rand) Option {
	return func(r *Renderer) { r.rng = rng }
}

// New creates a Renderer for the given strip.
func New(strip led.Strip, opts ...Option) *Renderer {
	r := &Renderer{
		strip: strip,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
		sleep: time.Sleep,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Render draws the given state. Segments confines the active style to the
// arc [0, Segments); the remainder of the ring is forced off on every pass.
func (r *Renderer) Render(st dose.DisplayState) error {
	switch st.Mode {
	case dose.ModeOff:
		return r.solid(0, led.Off)
	case dose.ModeCountdownBright:
		return r.solid(st.Segments, colorCountdown)
	case dose.ModeCountdownDim:
		return r.solid(st.Segments, dim(colorCountdown))
	case dose.ModeCountdownInit:
		if err := r.dazzle(st.Segments); err != nil {
			return err
		}
		return r.wipe(st.Segments, colorCountdown)
	case dose.ModeTakeBright:
		return r.theaterChase(st.Segments, colorTake)
	case dose.ModeTakeDim:
		return r.solid(st.Segments, dim(colorTake))
	case dose.ModeNetConnecting:
		return r.wipe(st.Segments, colorNet)
	case dose.ModeNetSuccess:
		return r.wipe(st.Segments, colorCountdown)
	case dose.ModeNetFailure:
		return r.wipe(st.Segments, colorTake)
	default:
		return r.solid(0, led.Off)
	}
}

func dim(c led.Color) led.Color {
	return c.Scale(1, dimDivisor)
}

// solid fills [0, lit) with c and forces the rest off, in a single frame.
func (r *Renderer) solid(lit int, c led.Color) error {
	for i := 0; i < r.strip.Size(); i++ {
		if i < lit {
			r.strip.SetPixel(i, c)
		} else {
			r.strip.SetPixel(i, led.Off)
		}
	}
	return r.strip.Show()
}

// wipe lights [0, lit) one pixel at a time.
func (r *Renderer) wipe(lit int, c led.Color) error {
	if err := r.solid(0, led.Off); err != nil {
		return err
	}
	for i := 0; i < lit && i < r.strip.Size(); i++ {
		r.strip.SetPixel(i, c)
		if err := r.strip.Show(); err != nil {
			return err
		}
		r.sleep(wipeDelay)
	}
	return nil
}

// theaterChase runs a marquee over [0, lit).
func (r *Renderer) theaterChase(lit int, c led.Color) error {
	for cycle := 0; cycle < chaseCycles; cycle++ {
		for q := 0; q < 3; q++ {
			for i := 0; i < r.strip.Size(); i++ {
				if i < lit && i%3 == q {
					r.strip.SetPixel(i, c)
				} else {
					r.strip.SetPixel(i, led.Off)
				}
			}
			if err := r.strip.Show(); err != nil {
				return err
			}
			r.sleep(chaseDelay)
		}
	}
	return nil
}

// dazzle flashes [0, lit) with random colors, each pixel guaranteed at
// least one channel >= minDazzleChannel, then clears the whole ring.
func (r *Renderer) dazzle(lit int) error {
	for step := 0; step < dazzleSteps; step++ {
		for i := 0; i < r.strip.Size(); i++ {
			if i < lit {
				r.strip.SetPixel(i, r.randColor())
			} else {
				r.strip.SetPixel(i, led.Off)
			}
		}
		if err := r.strip.Show(); err != nil {
			return err
		}
		r.sleep(dazzleDelay)
	}
	// Clear exactly [0, size).
	return r.solid(0, led.Off)
}

func (r *Renderer) randColor() led.Color {
	c := led.Color{
		R: uint8(r.rng.Intn(256)),
		G: uint8(r.rng.Intn(256)),
		B: uint8(r.rng.Intn(256)),
	}
	if c.R < minDazzleChannel && c.G < minDazzleChannel && c.B < minDazzleChannel {
		// Boost one channel so the pixel never renders near-black.
		switch r.rng.Intn(3) {
		case 0:
			c.R = minDazzleChannel + uint8(r.rng.Intn(128))
		case 1:
			c.G = minDazzleChannel + uint8(r.rng.Intn(128))
		default:
			c.B = minDazzleChannel + uint8(r.rng.Intn(128))
		}
	}
	return c
}
