// Package dmx holds the addressing, value-bounding and fixture-feature
// types shared by every core component: the universe store, the feature
// mapper, the effect baker/player and the endpoint layer.
package dmx

import "fmt"

// UniverseCount is the number of channels in a single DMX universe.
const UniverseCount = 512

// UniverseId identifies one 512-channel universe. It carries a total
// ordering so callers can keep universes in a stable, sorted list.
type UniverseId uint16

// Less reports whether u sorts before other.
func (u UniverseId) Less(other UniverseId) bool {
	return u < other
}

// UniverseAddress is a checked channel index within a universe, always
// in [0, UniverseCount).
type UniverseAddress struct {
	value uint16
}

// ErrAddressOutOfRange is returned by NewUniverseAddress when the
// requested index does not fit in a single universe.
type ErrAddressOutOfRange struct {
	Index int
}

func (e ErrAddressOutOfRange) Error() string {
	return fmt.Sprintf("dmx: address %d out of range [0,%d)", e.Index, UniverseCount)
}

// NewUniverseAddress constructs a UniverseAddress, failing when index
// is not in [0, UniverseCount).
func NewUniverseAddress(index int) (UniverseAddress, error) {
	if index < 0 || index >= UniverseCount {
		return UniverseAddress{}, ErrAddressOutOfRange{Index: index}
	}
	return UniverseAddress{value: uint16(index)}, nil
}

// MustUniverseAddress is like NewUniverseAddress but panics on failure.
// Reserved for call sites building addresses from compile-time constants.
func MustUniverseAddress(index int) UniverseAddress {
	addr, err := NewUniverseAddress(index)
	if err != nil {
		panic(err)
	}
	return addr
}

// Int returns the channel index as an int.
func (a UniverseAddress) Int() int {
	return int(a.value)
}

// FaderAddress is the universal addressing unit for a single DMX byte:
// a universe paired with a channel index inside it.
type FaderAddress struct {
	Universe UniverseId
	Address  UniverseAddress
}

// NewFaderAddress builds a FaderAddress from a raw universe id and
// channel index, validating the channel index.
func NewFaderAddress(universe UniverseId, index int) (FaderAddress, error) {
	addr, err := NewUniverseAddress(index)
	if err != nil {
		return FaderAddress{}, err
	}
	return FaderAddress{Universe: universe, Address: addr}, nil
}

func (f FaderAddress) String() string {
	return fmt.Sprintf("%d:%d", f.Universe, f.Address.Int())
}
