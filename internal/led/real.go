//go:build linux

package led

import (
	"fmt"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// WS2812 over SPI: each data bit becomes three SPI bits at 2.4 MHz, so a
// one is 110 (~833ns high) and a zero is 100 (~417ns high), inside the
// chip's timing tolerance.
const spiHz = 2400 * physic.KiloHertz

// latchBytes of zeros after the frame hold the line low past the 50us
// reset window.
const latchBytes = 18

// RealStrip drives a WS2812 ring on an SPI port.
type RealStrip struct {
	port   spi.PortCloser
	conn   spi.Conn
	pixels []Color

	// brightness caps every channel at value/255 on Show. The ring sits
	// at eye level, so this stays low for power and eye safety.
	brightness uint8
}

// NewRealStrip opens the SPI port (e.g. "/dev/spidev0.0", or "" for the
// first available) for a ring of count pixels.
func NewRealStrip(dev string, count int, brightness uint8) (*RealStrip, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init host: %w", err)
	}

	port, err := spireg.Open(dev)
	if err != nil {
		return nil, fmt.Errorf("open spi port %q: %w", dev, err)
	}

	conn, err := port.Connect(spiHz, spi.Mode0, 8)
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("connect spi: %w", err)
	}

	return &RealStrip{
		port:       port,
		conn:       conn,
		pixels:     make([]Color, count),
		brightness: brightness,
	}, nil
}

// Size returns the number of pixels on the ring.
func (s *RealStrip) Size() int {
	return len(s.pixels)
}

// SetPixel sets the buffered color of pixel i.
func (s *RealStrip) SetPixel(i int, c Color) {
	if i < 0 || i >= len(s.pixels) {
		return
	}
	s.pixels[i] = c
}

// Show encodes the buffer as a WS2812 bitstream and pushes it out.
func (s *RealStrip) Show() error {
	if err := s.conn.Tx(encodeFrame(s.pixels, s.brightness), nil); err != nil {
		return fmt.Errorf("spi tx: %w", err)
	}
	return nil
}

// encodeFrame applies the brightness cap and expands each pixel into nine
// SPI bytes in GRB channel order, followed by the latch.
func encodeFrame(pixels []Color, brightness uint8) []byte {
	buf := make([]byte, 0, len(pixels)*9+latchBytes)
	for _, p := range pixels {
		p = p.Scale(int(brightness), 255)
		buf = appendByte(buf, p.G)
		buf = appendByte(buf, p.R)
		buf = appendByte(buf, p.B)
	}
	for i := 0; i < latchBytes; i++ {
		buf = append(buf, 0x00)
	}
	return buf
}

// appendByte expands one channel byte into nine SPI bytes (3 SPI bits per
// data bit, MSB first).
func appendByte(buf []byte, b byte) []byte {
	var bits uint32 // 24 SPI bits for this channel
	for i := 7; i >= 0; i-- {
		bits <<= 3
		if b&(1<<uint(i)) != 0 {
			bits |= 0b110
		} else {
			bits |= 0b100
		}
	}
	return append(buf, byte(bits>>16), byte(bits>>8), byte(bits))
}

// Close blanks the ring and releases the SPI port.
func (s *RealStrip) Close() error {
	for i := range s.pixels {
		s.pixels[i] = Off
	}
	var errs []error
	if err := s.Show(); err != nil {
		errs = append(errs, err)
	}
	if err := s.port.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close spi port: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
