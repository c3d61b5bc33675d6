package effect

import (
	"testing"
	"time"

	"github.com/nightforge/lumen/internal/dmx"
)

// recordingSink captures every SetValues call for assertions, and
// counts how many calls were made (tick atomicity: at most one per
// doTick invocation).
type recordingSink struct {
	calls []map[dmx.FaderAddress]uint8
}

func (s *recordingSink) SetValues(writes []dmx.FaderWrite) {
	m := make(map[dmx.FaderAddress]uint8, len(writes))
	for _, w := range writes {
		m[w.Fader] = w.Value
	}
	s.calls = append(s.calls, m)
}

// runBakeSynchronously drives one bake request to completion without
// starting the Player's background goroutines, keeping the test
// deterministic.
func runBakeSynchronously(p *Player) {
	job := <-p.bakeRequests
	baked := Bake(job.effect, job.fixtures)
	p.handleBakeResult(bakeResult{id: job.effect.ID, baked: baked})
}

func TestPlayer_S1_SingleFaderEffectNonLooping(t *testing.T) {
	addr := faderAt(1, 0)
	e := Effect{
		ID:       "e1",
		Duration: 1000 * time.Millisecond,
		Tracks: []Track{
			{Fader: &FaderTrack{Address: addr, Values: []FaderKey{
				{StartTime: 0, Value: 0},
				{StartTime: 1000 * time.Millisecond, Value: 255},
			}}},
		},
	}

	sink := &recordingSink{}
	p := NewPlayer(sink, 20*time.Millisecond)
	p.handleCommand(Command{Kind: CmdEffectsChanged, Effects: []Effect{e}, Fixtures: fakeFixtures{}})
	p.handleCommand(Command{Kind: CmdPlay, EffectID: "e1"})

	p.doTick(0) // triggers bake enqueue
	runBakeSynchronously(p)

	p.doTick(500 * time.Millisecond)
	if last := sink.calls[len(sink.calls)-1][addr]; last != 0 {
		t.Errorf("at 500ms got %d, want 0 (const holds last key)", last)
	}

	p.doTick(500 * time.Millisecond) // now at 1000ms
	if last := sink.calls[len(sink.calls)-1][addr]; last != 255 {
		t.Errorf("at 1000ms got %d, want 255", last)
	}

	p.doTick(20 * time.Millisecond) // past duration: effect finishes
	if _, playing := p.playing["e1"]; playing {
		t.Error("effect should have stopped playing after exceeding duration")
	}
}

func TestPlayer_S3_Looping(t *testing.T) {
	addr := faderAt(1, 0)
	e := Effect{
		ID:       "e3",
		Duration: 500 * time.Millisecond,
		Looping:  true,
		Tracks: []Track{
			{Fader: &FaderTrack{Address: addr, Values: []FaderKey{
				{StartTime: 0, Value: 0},
				{StartTime: 500 * time.Millisecond, Value: 200},
			}}},
		},
	}

	sink := &recordingSink{}
	p := NewPlayer(sink, 500*time.Millisecond)
	p.handleCommand(Command{Kind: CmdEffectsChanged, Effects: []Effect{e}, Fixtures: fakeFixtures{}})
	p.handleCommand(Command{Kind: CmdPlay, EffectID: "e3"})

	p.doTick(0)
	runBakeSynchronously(p)

	// Three ticks of 500ms: the first lands at 500ms (key 200), the
	// second overshoots and wraps to 0 (key 0), the third is back at
	// 500ms (key 200).
	for i := 0; i < 3; i++ {
		p.doTick(500 * time.Millisecond)
		if _, stillPlaying := p.playing["e3"]; !stillPlaying {
			t.Fatalf("iteration %d: looping effect should never stop", i)
		}
	}
}

func TestPlayer_StopRemovesFromPlaying(t *testing.T) {
	sink := &recordingSink{}
	p := NewPlayer(sink, 20*time.Millisecond)
	e := Effect{ID: "e1", Duration: time.Second}
	p.handleCommand(Command{Kind: CmdEffectsChanged, Effects: []Effect{e}, Fixtures: fakeFixtures{}})
	p.handleCommand(Command{Kind: CmdPlay, EffectID: "e1"})

	if _, playing := p.playing["e1"]; !playing {
		t.Fatal("expected e1 to be playing")
	}

	p.handleCommand(Command{Kind: CmdStop, EffectID: "e1"})
	if _, playing := p.playing["e1"]; playing {
		t.Error("expected e1 to be stopped")
	}
}

func TestPlayer_DeterministicCollisionByInsertionOrder(t *testing.T) {
	addr := faderAt(1, 0)
	first := Effect{
		ID: "first", Duration: time.Second,
		Tracks: []Track{{Fader: &FaderTrack{Address: addr, Values: []FaderKey{{StartTime: 0, Value: 11}}}}},
	}
	second := Effect{
		ID: "second", Duration: time.Second,
		Tracks: []Track{{Fader: &FaderTrack{Address: addr, Values: []FaderKey{{StartTime: 0, Value: 22}}}}},
	}

	sink := &recordingSink{}
	p := NewPlayer(sink, 20*time.Millisecond)
	p.handleCommand(Command{Kind: CmdEffectsChanged, Effects: []Effect{first, second}, Fixtures: fakeFixtures{}})
	p.handleCommand(Command{Kind: CmdPlay, EffectID: "first"})
	p.handleCommand(Command{Kind: CmdPlay, EffectID: "second"})

	p.doTick(10 * time.Millisecond)
	runBakeSynchronously(p)
	runBakeSynchronously(p)

	p.doTick(10 * time.Millisecond)
	last := sink.calls[len(sink.calls)-1][addr]
	if last != 22 {
		t.Errorf("got %d, want 22 (second effect, played after first, wins the collision)", last)
	}
}

func TestPlayer_SubscriberReceivesPlayingEffectsUpdates(t *testing.T) {
	sink := &recordingSink{}
	p := NewPlayer(sink, 20*time.Millisecond)
	sub := p.Subscribe(4)
	defer sub.Close()

	e := Effect{ID: "e1", Duration: time.Second}
	p.handleCommand(Command{Kind: CmdEffectsChanged, Effects: []Effect{e}, Fixtures: fakeFixtures{}})
	p.handleCommand(Command{Kind: CmdPlay, EffectID: "e1"})

	// EffectsChanged emits an empty set first, then Play emits [e1].
	var last []Id
	for i := 0; i < 2; i++ {
		select {
		case ids := <-sub.Channel():
			last = ids
		case <-time.After(100 * time.Millisecond):
			t.Fatal("timed out waiting for PlayingEffects update")
		}
	}
	if len(last) != 1 || last[0] != "e1" {
		t.Errorf("got %v, want [e1]", last)
	}
}
