package endpoint

import (
	"log"
	"net"
	"time"

	"github.com/nightforge/lumen/internal/dmx"
	"github.com/nightforge/lumen/pkg/sacn"
)

// SacnWorker owns a persistent UDP sender bound to one E1.31 universe
// number and transmits its shadow buffer every cadence tick, regardless
// of whether the shadow changed since the last tick (E1.31 sources must
// keep streaming to hold a receiver's universe alive).
type SacnWorker struct {
	commandChan
	universe dmx.UniverseId
	shadow   [dmx.UniverseCount]byte

	conn         *net.UDPConn
	dest         *net.UDPAddr
	sacnUniverse uint16
	cid          sacn.SourceCID
	sequence     uint8
	interval     time.Duration
}

// NewSacnWorker opens a UDP socket for multicast sends to the
// configured sACN universe and starts the worker's transmit loop.
func NewSacnWorker(u dmx.UniverseId, sacnUniverse uint16, speed Speed, cid sacn.SourceCID) (*SacnWorker, error) {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{})
	if err != nil {
		return nil, err
	}

	w := &SacnWorker{
		commandChan:  newCommandChan(32),
		universe:     u,
		conn:         conn,
		dest:         sacn.MulticastAddr(sacnUniverse),
		sacnUniverse: sacnUniverse,
		cid:          cid,
		interval:     speed.Interval(),
	}
	go w.run()
	return w, nil
}

func (w *SacnWorker) run() {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	defer func() {
		_ = w.conn.Close()
		close(w.done)
	}()

	for {
		select {
		case cmd, ok := <-w.cmds:
			if !ok {
				return
			}
			if cmd.Kind == DataExit {
				w.terminate()
				log.Printf("endpoint sacn[%d]: exiting", w.universe)
				return
			}
			cmd.ApplyTo(&w.shadow)
		case <-ticker.C:
			w.transmit()
		}
	}
}

func (w *SacnWorker) transmit() {
	w.sequence++
	packet := sacn.BuildDataPacket(w.sacnUniverse, w.sequence, "lumen", w.cid, w.shadow[:])
	if _, err := w.conn.WriteToUDP(packet, w.dest); err != nil {
		log.Printf("endpoint sacn[%d]: transmit failed: %v", w.universe, err)
	}
}

func (w *SacnWorker) terminate() {
	w.sequence++
	packet := sacn.BuildTerminatePacket(w.sacnUniverse, w.sequence, "lumen", w.cid)
	if _, err := w.conn.WriteToUDP(packet, w.dest); err != nil {
		log.Printf("endpoint sacn[%d]: terminate send failed: %v", w.universe, err)
	}
}
