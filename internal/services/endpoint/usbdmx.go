package endpoint

import (
	"log"
	"time"

	"github.com/nightforge/lumen/internal/dmx"
	"github.com/nightforge/lumen/pkg/usbdmx"
)

// UsbWorker writes its shadow buffer to a serial DMX adapter on every
// received command, paced by the configured Speed's packet time rather
// than writing as fast as commands arrive.
type UsbWorker struct {
	commandChan
	universe dmx.UniverseId
	shadow   [dmx.UniverseCount]byte

	port       *usbdmx.Port
	packetTime time.Duration
	lastWrite  time.Time
}

// NewUsbWorker opens the named serial port and starts the worker.
func NewUsbWorker(u dmx.UniverseId, portName string, speed Speed) (*UsbWorker, error) {
	port, err := usbdmx.Open(portName)
	if err != nil {
		return nil, err
	}

	w := &UsbWorker{
		commandChan: newCommandChan(32),
		universe:    u,
		port:        port,
		packetTime:  speed.Interval(),
	}
	go w.run()
	return w, nil
}

func (w *UsbWorker) run() {
	defer func() {
		_ = w.port.Close()
		close(w.done)
	}()

	for cmd := range w.cmds {
		if cmd.Kind == DataExit {
			log.Printf("endpoint usb[%d]: exiting", w.universe)
			return
		}
		cmd.ApplyTo(&w.shadow)
		w.writeShaped()
	}
}

// writeShaped blocks until at least packetTime has elapsed since the
// last write, so a burst of commands doesn't overrun the adapter.
func (w *UsbWorker) writeShaped() {
	if since := time.Since(w.lastWrite); since < w.packetTime {
		time.Sleep(w.packetTime - since)
	}
	if err := w.port.Write(w.shadow[:]); err != nil {
		log.Printf("endpoint usb[%d]: write failed: %v", w.universe, err)
	}
	w.lastWrite = time.Now()
}
