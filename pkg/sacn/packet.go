// Package sacn builds E1.31 (streaming ACN / sACN) UDP packets carrying
// DMX universe data, and computes the multicast address a universe is
// transmitted to.
package sacn

import (
	"encoding/binary"
	"net"
)

// Port is the standard E1.31 UDP port.
const Port = 5568

const (
	vectorRootData    = 0x00000004
	vectorFramingData = 0x00000002
	vectorDMPSet      = 0x02

	// optionStreamTerminated marks the final frame of a source's
	// transmission, per E1.31 §6.2.6; receivers drop the source on
	// seeing it rather than waiting for a timeout.
	optionStreamTerminated = 0x40
)

var acnPacketIdentifier = [12]byte{
	0x41, 0x53, 0x43, 0x2d, 0x45, 0x31, 0x2e, 0x31, 0x37, 0x00, 0x00, 0x00,
}

// SourceCID is a 16-byte component identifier; callers should generate
// one per running process and reuse it across frames so receivers treat
// them as one continuous source.
type SourceCID [16]byte

// BuildDataPacket builds a standard E1.31 data frame for universe,
// carrying up to 512 bytes of DMX data at the given sequence number.
func BuildDataPacket(universe uint16, sequence uint8, sourceName string, cid SourceCID, data []byte) []byte {
	return build(universe, sequence, sourceName, cid, data, false)
}

// BuildTerminatePacket builds a zero-length, Stream_Terminated frame
// that tells receivers this source is done transmitting, rather than
// leaving them to expire the universe after a timeout.
func BuildTerminatePacket(universe uint16, sequence uint8, sourceName string, cid SourceCID) []byte {
	return build(universe, sequence, sourceName, cid, nil, true)
}

func build(universe uint16, sequence uint8, sourceName string, cid SourceCID, data []byte, terminate bool) []byte {
	dataLen := len(data)
	if dataLen > 512 {
		dataLen = 512
	}

	// Root Layer (38) + Framing Layer (77) + DMP Layer (11 + data).
	pktLen := 126 + dataLen
	buf := make([]byte, pktLen)

	// Root Layer
	binary.BigEndian.PutUint16(buf[0:2], 0x0010) // preamble size
	binary.BigEndian.PutUint16(buf[2:4], 0x0000) // post-amble size
	copy(buf[4:16], acnPacketIdentifier[:])
	binary.BigEndian.PutUint16(buf[16:18], flagsAndLength(pktLen-16))
	binary.BigEndian.PutUint32(buf[18:22], vectorRootData)
	copy(buf[22:38], cid[:])

	// Framing Layer
	binary.BigEndian.PutUint16(buf[38:40], flagsAndLength(pktLen-38))
	binary.BigEndian.PutUint32(buf[40:44], vectorFramingData)
	copy(buf[44:108], sourceName)
	buf[108] = 100 // priority
	binary.BigEndian.PutUint16(buf[109:111], 0)
	buf[111] = sequence
	if terminate {
		buf[112] = optionStreamTerminated
	}
	binary.BigEndian.PutUint16(buf[113:115], universe)

	// DMP Layer
	binary.BigEndian.PutUint16(buf[115:117], flagsAndLength(11+dataLen))
	buf[117] = vectorDMPSet
	buf[118] = 0xa1 // address type & data type
	binary.BigEndian.PutUint16(buf[119:121], 0)
	binary.BigEndian.PutUint16(buf[121:123], 1)
	binary.BigEndian.PutUint16(buf[123:125], uint16(dataLen+1)) // includes START code
	buf[125] = 0                                                // DMX START code
	copy(buf[126:], data[:dataLen])

	return buf
}

// flagsAndLength packs the high-nibble 0x7 flags with a 12-bit length,
// the layout E1.31 uses for every PDU's "Flags and Length" field.
func flagsAndLength(length int) uint16 {
	return 0x7000 | uint16(length)
}

// MulticastAddr returns the standard E1.31 multicast group address for
// a universe: 239.255.hi(universe).lo(universe).
func MulticastAddr(universe uint16) *net.UDPAddr {
	return &net.UDPAddr{
		IP:   net.IPv4(239, 255, byte(universe>>8), byte(universe)),
		Port: Port,
	}
}
