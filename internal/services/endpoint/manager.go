package endpoint

import (
	"fmt"

	"github.com/lucsky/cuid"
	"github.com/nightforge/lumen/internal/dmx"
	"github.com/nightforge/lumen/pkg/sacn"
)

// processCID identifies this running process as one sACN source across
// every universe and every Adapt rebuild, generated once at package
// load so peers see one continuous source rather than a new one per
// worker restart.
var processCID = cidFromSeed(cuid.New())

func cidFromSeed(seed string) sacn.SourceCID {
	var cid sacn.SourceCID
	copy(cid[:], seed)
	return cid
}

// BuildWorkers starts one Worker per configured ConfigItem for universe
// u and returns the running set. Any error tears down the workers
// already started before returning.
func BuildWorkers(u dmx.UniverseId, items []ConfigItem) ([]Worker, error) {
	workers := make([]Worker, 0, len(items))

	shutdown := func() {
		for _, w := range workers {
			w.Send(Data{Kind: DataExit})
			<-w.Done()
		}
	}

	for _, item := range items {
		w, err := buildWorker(u, item)
		if err != nil {
			shutdown()
			return nil, fmt.Errorf("endpoint: building worker for universe %d: %w", u, err)
		}
		workers = append(workers, w)
	}
	return workers, nil
}

func buildWorker(u dmx.UniverseId, item ConfigItem) (Worker, error) {
	switch item.Kind {
	case KindLogger:
		return NewLoggerWorker(u), nil
	case KindArtNet:
		return NewArtNetWorker(u, item.ArtNetBroadcast)
	case KindSacn:
		return NewSacnWorker(u, item.SacnUniverse, item.SacnSpeed, processCID)
	case KindUsb:
		return NewUsbWorker(u, item.UsbPort, item.UsbSpeed)
	default:
		return nil, fmt.Errorf("endpoint: unknown config kind %d", item.Kind)
	}
}

// ExitAll sends DataExit to every worker and waits for each to
// acknowledge, in order. Used during Adapt's teardown sequence before
// the drain grace period.
func ExitAll(workers []Worker) {
	for _, w := range workers {
		w.Send(Data{Kind: DataExit})
	}
	for _, w := range workers {
		<-w.Done()
	}
}
