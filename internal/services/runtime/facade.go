// Package runtime composes the Universe Store, the Effect Player and
// the Endpoint Layer behind one entry point: Adapt rebuilds all three
// from a new project snapshot, and SetValue/SetValues are the only
// path anything outside this package has onto the wire.
package runtime

import (
	"log"
	"sync"
	"time"

	"github.com/nightforge/lumen/internal/dmx"
	"github.com/nightforge/lumen/internal/pubsub"
	"github.com/nightforge/lumen/internal/services/effect"
	"github.com/nightforge/lumen/internal/services/endpoint"
	"github.com/nightforge/lumen/internal/services/universe"
)

// DefaultDrainGrace is the pause Adapt holds between exiting the old
// endpoint worker set and building the new one, giving sockets and
// serial ports time to release. Policy, not correctness: any positive
// value is safe, 800ms is simply the default.
const DefaultDrainGrace = 800 * time.Millisecond

// Facade is the single writer of universe bytes and the only
// component that directly owns endpoint worker lifetimes. The Effect
// Player writes through it rather than touching the Store itself.
type Facade struct {
	mu         sync.RWMutex
	store      *universe.Store
	player     *effect.Player
	workers    map[dmx.UniverseId][]endpoint.Worker
	drainGrace time.Duration
}

// New builds a Facade with its own Universe Store and Effect Player,
// wired so the Player's writes flow back through this Facade. tick and
// drainGrace fall back to their package defaults when zero.
func New(tick, drainGrace time.Duration) *Facade {
	if drainGrace <= 0 {
		drainGrace = DefaultDrainGrace
	}
	f := &Facade{
		store:      universe.New(),
		workers:    make(map[dmx.UniverseId][]endpoint.Worker),
		drainGrace: drainGrace,
	}
	f.player = effect.NewPlayer(f, tick)
	return f
}

// Start runs the Effect Player's command/tick/bake loop in its own
// goroutine. Call once, before the first Adapt.
func (f *Facade) Start() {
	go f.player.Run()
}

// StopPlayer asks the Effect Player to terminate cooperatively.
func (f *Facade) StopPlayer() {
	f.player.Send(effect.Command{Kind: effect.CmdStopPlayer})
}

// Play starts playback of effect id from zero elapsed time if it is
// not already playing.
func (f *Facade) Play(id effect.Id) {
	f.player.Send(effect.Command{Kind: effect.CmdPlay, EffectID: id})
}

// Stop removes effect id from the playing set.
func (f *Facade) Stop(id effect.Id) {
	f.player.Send(effect.Command{Kind: effect.CmdStop, EffectID: id})
}

// EffectChanged marks id's baked table stale, triggering a re-bake on
// its next tick (or immediately after the in-flight bake if one is
// already running).
func (f *Facade) EffectChanged(id effect.Id) {
	f.player.Send(effect.Command{Kind: effect.CmdEffectChanged, EffectID: id})
}

// PlayingEffects subscribes to the Player's playing-set feed.
func (f *Facade) PlayingEffects(bufferSize int) *pubsub.Subscription[[]effect.Id] {
	return f.player.Subscribe(bufferSize)
}

// Adapt rebuilds universe buffers and endpoint workers from project.
// Universes keep their bytes across the call unless clear is true.
// Endpoint teardown, the drain grace, and endpoint reconstruction all
// happen while holding the Facade's lock, so no write can reach a
// worker that is mid-teardown.
func (f *Facade) Adapt(project *Project, clear bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.store.Adapt(project.Universes, clear)
	for _, id := range project.Universes {
		f.store.PublishSnapshot(id)
	}

	for _, workers := range f.workers {
		endpoint.ExitAll(workers)
	}

	time.Sleep(f.drainGrace)

	next := make(map[dmx.UniverseId][]endpoint.Worker, len(project.EndpointConfig))
	for id, items := range project.EndpointConfig {
		workers, err := endpoint.BuildWorkers(id, items)
		if err != nil {
			log.Printf("runtime adapt: %v", err)
			continue
		}
		next[id] = workers
	}
	f.workers = next

	for id, workers := range f.workers {
		snap, ok := f.store.Snapshot(id)
		if !ok {
			continue
		}
		for _, w := range workers {
			w.Send(endpoint.Data{Kind: endpoint.DataEntire, Bytes: snap})
		}
	}

	f.player.Send(effect.Command{
		Kind:     effect.CmdEffectsChanged,
		Effects:  project.Effects,
		Fixtures: newFixtureSnapshot(project.UniversePatch),
	})
}

// SetValue writes one channel through the Store and forwards the same
// write to that universe's endpoint workers. A no-op, on both sides,
// when the universe is not currently adapted in.
func (f *Facade) SetValue(u dmx.UniverseId, addr dmx.UniverseAddress, v uint8) {
	f.store.SetValue(u, addr, v)

	f.mu.RLock()
	defer f.mu.RUnlock()

	for _, w := range f.workers[u] {
		w.Send(endpoint.Data{Kind: endpoint.DataSingle, Address: addr, Value: v})
	}
}

// SetValues applies a batch of fader writes through the Store and fans
// each universe's subset out to that universe's endpoint workers as
// one Multiple command. This is the Effect Player's only path to the
// wire: it implements effect.ValueSink.
func (f *Facade) SetValues(writes []dmx.FaderWrite) {
	f.store.SetValues(writes)
	if len(writes) == 0 {
		return
	}

	byUniverse := make(map[dmx.UniverseId][]endpoint.ChannelWrite)
	for _, w := range writes {
		byUniverse[w.Fader.Universe] = append(byUniverse[w.Fader.Universe], endpoint.ChannelWrite{
			Address: w.Fader.Address,
			Value:   w.Value,
		})
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	for u, cw := range byUniverse {
		for _, w := range f.workers[u] {
			w.Send(endpoint.Data{Kind: endpoint.DataMultiple, Writes: cw})
		}
	}
}

// Snapshot returns a coherent copy of one universe's current bytes.
func (f *Facade) Snapshot(u dmx.UniverseId) ([dmx.UniverseCount]byte, bool) {
	return f.store.Snapshot(u)
}

// Subscribe returns a live feed of universe Update events. Every
// currently known universe is delivered as a full UniverseSnapshot
// event before any live delta, so a new subscriber never has to guess
// at state it joined late on.
func (f *Facade) Subscribe(bufferSize int) *ValueSubscription {
	sub := f.store.Subscribe(bufferSize)
	initial := f.store.InitialStates()

	out := make(chan universe.Update, bufferSize+len(initial))
	for id, bytes := range initial {
		out <- universe.Update{Kind: universe.UniverseSnapshot, SnapshotUniverse: id, SnapshotValues: bytes}
	}

	go func() {
		defer close(out)
		for u := range sub.Channel() {
			select {
			case out <- u:
			default:
			}
		}
	}()

	return &ValueSubscription{ch: out, underlying: sub}
}

// ValueSubscription is the Facade's merged feed: buffered initial
// snapshots followed by the Store's live broadcast.
type ValueSubscription struct {
	ch         chan universe.Update
	underlying *pubsub.Subscription[universe.Update]
}

// Channel returns the receive side of the subscription.
func (s *ValueSubscription) Channel() <-chan universe.Update {
	return s.ch
}

// Close unsubscribes from the underlying Store feed.
func (s *ValueSubscription) Close() {
	s.underlying.Close()
}
