package endpoint

import (
	"log"

	"github.com/nightforge/lumen/internal/dmx"
)

// LoggerWorker prints every command it receives. It has no cadence: it
// reacts purely to incoming commands, useful for development and for
// universes with no physical output configured yet.
type LoggerWorker struct {
	commandChan
	universe dmx.UniverseId
	shadow   [dmx.UniverseCount]byte
}

// NewLoggerWorker starts a logger worker for universe u and returns it
// already running in its own goroutine.
func NewLoggerWorker(u dmx.UniverseId) *LoggerWorker {
	w := &LoggerWorker{commandChan: newCommandChan(16), universe: u}
	go w.run()
	return w
}

func (w *LoggerWorker) run() {
	defer close(w.done)
	for cmd := range w.cmds {
		if cmd.Kind == DataExit {
			log.Printf("endpoint logger[%d]: exiting", w.universe)
			return
		}
		cmd.ApplyTo(&w.shadow)
		log.Printf("endpoint logger[%d]: %s", w.universe, describe(cmd))
	}
}

func describe(d Data) string {
	switch d.Kind {
	case DataSingle:
		return "single channel update"
	case DataMultiple:
		return "multi-channel update"
	case DataEntire:
		return "full snapshot"
	default:
		return "unknown"
	}
}
