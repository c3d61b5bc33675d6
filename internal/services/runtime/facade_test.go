package runtime

import (
	"testing"
	"time"

	"github.com/nightforge/lumen/internal/dmx"
	"github.com/nightforge/lumen/internal/services/effect"
	"github.com/nightforge/lumen/internal/services/endpoint"
	"github.com/nightforge/lumen/internal/services/universe"
)

func TestAdaptProducesFullSnapshotsS4(t *testing.T) {
	f := New(effect.DefaultTick, time.Millisecond)
	f.Start()
	t.Cleanup(f.StopPlayer)

	u := dmx.UniverseId(1)
	f.Adapt(&Project{
		Universes:      []dmx.UniverseId{u},
		EndpointConfig: map[dmx.UniverseId][]endpoint.ConfigItem{u: {{Kind: endpoint.KindLogger}}},
	}, false)

	snap, ok := f.Snapshot(u)
	if !ok {
		t.Fatal("expected universe to be present after Adapt")
	}
	if len(snap) != dmx.UniverseCount {
		t.Fatalf("expected %d bytes, got %d", dmx.UniverseCount, len(snap))
	}
}

func TestAdaptPreservesBytesUnlessClearedS6(t *testing.T) {
	f := New(effect.DefaultTick, time.Millisecond)
	f.Start()
	t.Cleanup(f.StopPlayer)

	u := dmx.UniverseId(1)
	project := &Project{
		Universes:      []dmx.UniverseId{u},
		EndpointConfig: map[dmx.UniverseId][]endpoint.ConfigItem{},
	}
	f.Adapt(project, false)

	addr, _ := dmx.NewUniverseAddress(10)
	f.SetValue(u, addr, 99)

	f.Adapt(project, false)
	snap, _ := f.Snapshot(u)
	if snap[10] != 99 {
		t.Fatalf("expected byte 10 to be preserved as 99, got %d", snap[10])
	}

	f.Adapt(project, true)
	snap, _ = f.Snapshot(u)
	if snap[10] != 0 {
		t.Fatalf("expected byte 10 to be cleared to 0, got %d", snap[10])
	}
}

func TestSetValueNoOpOnAbsentUniverse(t *testing.T) {
	f := New(effect.DefaultTick, time.Millisecond)
	f.Start()
	t.Cleanup(f.StopPlayer)

	addr, _ := dmx.NewUniverseAddress(0)
	f.SetValue(dmx.UniverseId(7), addr, 255)

	if _, ok := f.Snapshot(dmx.UniverseId(7)); ok {
		t.Fatal("expected no universe to exist for an un-adapted id")
	}
}

func TestSubscribeDeliversFullSnapshotBeforeDeltas(t *testing.T) {
	f := New(effect.DefaultTick, time.Millisecond)
	f.Start()
	t.Cleanup(f.StopPlayer)

	u := dmx.UniverseId(1)
	f.Adapt(&Project{
		Universes:      []dmx.UniverseId{u},
		EndpointConfig: map[dmx.UniverseId][]endpoint.ConfigItem{},
	}, false)

	sub := f.Subscribe(8)
	defer sub.Close()

	addr, _ := dmx.NewUniverseAddress(3)
	f.SetValue(u, addr, 77)

	first := waitForEvent(t, sub)
	if first.Kind != universe.UniverseSnapshot {
		t.Fatalf("expected first event to be a full snapshot, got kind %v", first.Kind)
	}

	second := waitForEvent(t, sub)
	if second.Kind != universe.ValueUpdated || second.Value != 77 {
		t.Fatalf("expected the ValueUpdated delta for byte 3, got %+v", second)
	}
}

func waitForEvent(t *testing.T, sub *ValueSubscription) universe.Update {
	t.Helper()
	select {
	case evt := <-sub.Channel():
		return evt
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for subscription event")
		return universe.Update{}
	}
}
