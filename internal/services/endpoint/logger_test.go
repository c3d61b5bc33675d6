package endpoint

import (
	"testing"
	"time"

	"github.com/nightforge/lumen/internal/dmx"
)

func TestLoggerWorkerAppliesAndExits(t *testing.T) {
	w := NewLoggerWorker(dmx.UniverseId(1))

	addr, err := dmx.NewUniverseAddress(5)
	if err != nil {
		t.Fatalf("NewUniverseAddress: %v", err)
	}
	w.Send(Data{Kind: DataSingle, Address: addr, Value: 200})
	w.Send(Data{Kind: DataExit})

	select {
	case <-w.Done():
	case <-time.After(time.Second):
		t.Fatal("worker did not exit after DataExit")
	}
}

func TestDescribeCoversEveryKind(t *testing.T) {
	for _, k := range []DataKind{DataSingle, DataMultiple, DataEntire, DataKind(99)} {
		if s := describe(Data{Kind: k}); s == "" {
			t.Fatalf("describe(%v) returned empty string", k)
		}
	}
}
