// Package usbdmx drives an Open-DMX-style USB-to-serial adapter: a
// plain serial port running at DMX512's 250kbaud, framed by a break
// and mark-after-break before each 513-byte (start code + 512 channel)
// frame.
package usbdmx

import (
	"fmt"
	"time"

	"go.bug.st/serial"
)

const (
	baudRate       = 250000
	breakTime      = 176 * time.Microsecond
	markAfterBreak = 12 * time.Microsecond
	startCode      = 0x00
)

// Port wraps an open serial port shaped for DMX512 frames.
type Port struct {
	port serial.Port
}

// Open opens the named serial device (e.g. "/dev/ttyUSB0", "COM3") at
// DMX512's line rate.
func Open(name string) (*Port, error) {
	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.TwoStopBits,
	}
	p, err := serial.Open(name, mode)
	if err != nil {
		return nil, fmt.Errorf("usbdmx: open %q: %w", name, err)
	}
	return &Port{port: p}, nil
}

// Write sends one DMX frame: a break, a mark-after-break, the DMX start
// code, then up to 512 channel bytes.
func (p *Port) Write(channels []byte) error {
	if err := p.port.Break(breakTime); err != nil {
		return fmt.Errorf("usbdmx: break: %w", err)
	}
	time.Sleep(markAfterBreak)

	if _, err := p.port.Write(buildFrame(channels)); err != nil {
		return fmt.Errorf("usbdmx: write: %w", err)
	}
	return nil
}

// buildFrame prefixes the DMX start code onto the channel bytes.
func buildFrame(channels []byte) []byte {
	frame := make([]byte, 0, 1+len(channels))
	frame = append(frame, startCode)
	frame = append(frame, channels...)
	return frame
}

// Close closes the underlying serial port.
func (p *Port) Close() error {
	return p.port.Close()
}
