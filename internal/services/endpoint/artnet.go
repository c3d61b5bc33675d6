package endpoint

import (
	"log"
	"net"

	"github.com/nightforge/lumen/internal/dmx"
	"github.com/nightforge/lumen/pkg/artnet"
)

// ArtNetWorker listens for ArtPollReply datagrams to discover peers,
// then unicasts a full ArtDmx snapshot to every known peer whenever its
// shadow buffer changes.
type ArtNetWorker struct {
	commandChan
	universe dmx.UniverseId
	shadow   [dmx.UniverseCount]byte

	conn      *net.UDPConn
	broadcast string
	sequence  byte
	peers     map[string]net.IP
}

// NewArtNetWorker binds a UDP socket on the Art-Net port, broadcasts an
// ArtPoll to discover peers, and starts the worker's goroutines.
func NewArtNetWorker(u dmx.UniverseId, broadcastAddr string) (*ArtNetWorker, error) {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{Port: artnet.DefaultPort})
	if err != nil {
		return nil, err
	}

	w := &ArtNetWorker{
		commandChan: newCommandChan(32),
		universe:    u,
		conn:        conn,
		broadcast:   broadcastAddr,
		peers:       make(map[string]net.IP),
	}

	go w.listen()
	w.poll()
	go w.run()
	return w, nil
}

func (w *ArtNetWorker) poll() {
	if w.broadcast == "" {
		return
	}
	addr := &net.UDPAddr{IP: net.ParseIP(w.broadcast), Port: artnet.DefaultPort}
	if _, err := w.conn.WriteToUDP(artnet.BuildPollPacket(), addr); err != nil {
		log.Printf("endpoint artnet[%d]: poll failed: %v", w.universe, err)
	}
}

// listen reads ArtPollReply datagrams and adds new senders to the peer
// set. It exits when the socket is closed by run's Exit handling.
func (w *ArtNetWorker) listen() {
	buf := make([]byte, 1024)
	for {
		n, srcAddr, err := w.conn.ReadFromUDP(buf)
		if err != nil {
			return // socket closed
		}
		reply, ok := artnet.ParsePollReply(buf[:n])
		if !ok {
			continue
		}
		ip := net.IP(reply.IP[:])
		key := ip.String()
		if _, known := w.peers[key]; !known {
			w.peers[key] = ip
			log.Printf("endpoint artnet[%d]: discovered peer %s", w.universe, key)
			w.sendSnapshotTo(&net.UDPAddr{IP: ip, Port: artnet.DefaultPort})
		}
		_ = srcAddr
	}
}

func (w *ArtNetWorker) run() {
	defer func() {
		_ = w.conn.Close()
		close(w.done)
	}()

	for cmd := range w.cmds {
		if cmd.Kind == DataExit {
			log.Printf("endpoint artnet[%d]: exiting", w.universe)
			return
		}
		cmd.ApplyTo(&w.shadow)
		w.broadcastToPeers()
	}
}

func (w *ArtNetWorker) broadcastToPeers() {
	for _, ip := range w.peers {
		w.sendSnapshotTo(&net.UDPAddr{IP: ip, Port: artnet.DefaultPort})
	}
}

func (w *ArtNetWorker) sendSnapshotTo(addr *net.UDPAddr) {
	w.sequence++
	packet := artnet.BuildDMXPacket(int(w.universe)+1, w.shadow[:], w.sequence)
	if _, err := w.conn.WriteToUDP(packet, addr); err != nil {
		log.Printf("endpoint artnet[%d]: send to %s failed: %v", w.universe, addr, err)
	}
}
