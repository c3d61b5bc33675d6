package artnet

import "encoding/binary"

const (
	// OpCodePoll is the Art-Net operation code for an ArtPoll discovery packet.
	OpCodePoll uint16 = 0x2000
	// OpCodePollReply is the Art-Net operation code for an ArtPollReply.
	OpCodePollReply uint16 = 0x2100
	// PollReplySize is the fixed size of an ArtPollReply packet.
	PollReplySize = 239
)

// BuildPollPacket creates an ArtPoll packet requesting replies from
// every node on the network, with diagnostics disabled.
func BuildPollPacket() []byte {
	packet := make([]byte, 14)
	copy(packet[0:8], ArtNetID)
	binary.LittleEndian.PutUint16(packet[8:10], OpCodePoll)
	binary.BigEndian.PutUint16(packet[10:12], ProtocolVersion)
	packet[12] = 0x00 // TalkToMe: no diagnostics, reply on change only disabled
	packet[13] = 0x00 // Priority: all
	return packet
}

// PollReply is the subset of an ArtPollReply we act on: enough to add
// the sender to our known-peer set.
type PollReply struct {
	IP [4]byte
}

// ParsePollReply validates the Art-Net header and opcode of a received
// UDP datagram and extracts the replying node's IP. Returns false for
// anything that isn't a well-formed ArtPollReply.
func ParsePollReply(data []byte) (PollReply, bool) {
	if len(data) < 21 {
		return PollReply{}, false
	}
	if string(data[0:8]) != string(ArtNetID) {
		return PollReply{}, false
	}
	opCode := binary.LittleEndian.Uint16(data[8:10])
	if opCode != OpCodePollReply {
		return PollReply{}, false
	}

	var reply PollReply
	copy(reply.IP[:], data[10:14])
	return reply, true
}
