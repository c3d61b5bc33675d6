// Package endpoint implements the transport workers that receive
// universe bytes from the runtime and deliver them to the physical
// lighting world: a logger, Art-Net, sACN and USB-DMX.
package endpoint

import (
	"time"

	"github.com/nightforge/lumen/internal/dmx"
)

// Speed names the cadence a cadence-driven worker transmits at.
type Speed int

const (
	Slow Speed = iota
	Medium
	Fast
	SuperFast // USB-DMX only
)

// Interval returns the wall-clock period between transmissions.
func (s Speed) Interval() time.Duration {
	switch s {
	case Slow:
		return 200 * time.Millisecond
	case Medium:
		return 100 * time.Millisecond
	case Fast:
		return 30 * time.Millisecond
	case SuperFast:
		return 10 * time.Millisecond
	default:
		return 100 * time.Millisecond
	}
}

// ConfigKind tags the closed set of endpoint variants a universe can be
// configured with.
type ConfigKind int

const (
	KindLogger ConfigKind = iota
	KindArtNet
	KindSacn
	KindUsb
)

// ConfigItem is one wire-visible endpoint configuration entry.
type ConfigItem struct {
	Kind ConfigKind

	// ArtNet
	ArtNetBroadcast string

	// Sacn
	SacnUniverse uint16
	SacnSpeed    Speed

	// Usb
	UsbPort  string
	UsbSpeed Speed
}

// DataKind tags the closed set of commands a worker's channel carries.
type DataKind int

const (
	DataSingle DataKind = iota
	DataMultiple
	DataEntire
	DataExit
)

// Data is the single message type sent down every worker's command
// channel. Only the fields relevant to Kind are populated.
type Data struct {
	Kind DataKind

	// Single
	Address dmx.UniverseAddress
	Value   uint8

	// Multiple
	Writes []ChannelWrite

	// Entire
	Bytes [dmx.UniverseCount]byte
}

// ChannelWrite is one (address, value) pair inside a Multiple command.
type ChannelWrite struct {
	Address dmx.UniverseAddress
	Value   uint8
}

// ApplyTo mutates shadow in place according to this command. Exit is
// handled by the worker loop itself, not here.
func (d Data) ApplyTo(shadow *[dmx.UniverseCount]byte) {
	switch d.Kind {
	case DataSingle:
		shadow[d.Address.Int()] = d.Value
	case DataMultiple:
		for _, w := range d.Writes {
			shadow[w.Address.Int()] = w.Value
		}
	case DataEntire:
		*shadow = d.Bytes
	}
}
