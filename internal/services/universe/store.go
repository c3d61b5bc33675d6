// Package universe holds the authoritative DMX universe byte buffers.
// It is the single source of truth the rest of the runtime reads and
// writes through; everything else (feature mapping, baking, playback,
// endpoints) is stateless or holds only a derived shadow.
package universe

import (
	"sync"

	"github.com/nightforge/lumen/internal/dmx"
	"github.com/nightforge/lumen/internal/pubsub"
)

// UpdateKind tags the variant of an Update event.
type UpdateKind int

const (
	ValueUpdated UpdateKind = iota
	ValuesUpdated
	UniverseSnapshot
)

// Update is the event taxonomy published on every store mutation.
// Fields not relevant to Kind are left zero.
type Update struct {
	Kind UpdateKind

	// ValueUpdated
	Universe dmx.UniverseId
	Address  dmx.UniverseAddress
	Value    uint8

	// ValuesUpdated
	Writes []dmx.FaderWrite

	// UniverseSnapshot
	SnapshotUniverse dmx.UniverseId
	SnapshotValues   [dmx.UniverseCount]byte
}

// Store is the authoritative map of UniverseId to a 512-byte buffer. It
// serializes writes and event emission behind one mutex so subscribers
// always observe an order consistent with the byte state at the time
// of publish.
type Store struct {
	mu        sync.Mutex
	universes map[dmx.UniverseId]*[dmx.UniverseCount]byte
	bus       *pubsub.Bus[Update]
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		universes: make(map[dmx.UniverseId]*[dmx.UniverseCount]byte),
		bus:       pubsub.NewBus[Update](),
	}
}

// Adapt replaces the store's universe set to exactly ids. Universes
// present both before and after keep their bytes unless clear is true,
// in which case every universe (including ones that already existed)
// starts zeroed. Universes no longer present are dropped.
func (s *Store) Adapt(ids []dmx.UniverseId, clear bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(map[dmx.UniverseId]*[dmx.UniverseCount]byte, len(ids))
	for _, id := range ids {
		if !clear {
			if existing, ok := s.universes[id]; ok {
				next[id] = existing
				continue
			}
		}
		next[id] = &[dmx.UniverseCount]byte{}
	}
	s.universes = next
}

// SetValue writes one channel. A no-op (no write, no event) when the
// universe is absent: callers are expected to have Adapt'ed first.
func (s *Store) SetValue(u dmx.UniverseId, addr dmx.UniverseAddress, v uint8) {
	s.mu.Lock()
	defer s.mu.Unlock()
	buf, ok := s.universes[u]
	if !ok {
		return
	}
	buf[addr.Int()] = v

	s.bus.Publish(Update{Kind: ValueUpdated, Universe: u, Address: addr, Value: v})
}

// SetValues applies a batch of fader writes, skipping any whose
// universe is absent, then publishes one ValuesUpdated event carrying
// only the writes that actually landed.
func (s *Store) SetValues(writes []dmx.FaderWrite) {
	if len(writes) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	applied := make([]dmx.FaderWrite, 0, len(writes))
	for _, w := range writes {
		buf, ok := s.universes[w.Fader.Universe]
		if !ok {
			continue
		}
		buf[w.Fader.Address.Int()] = w.Value
		applied = append(applied, w)
	}

	if len(applied) > 0 {
		s.bus.Publish(Update{Kind: ValuesUpdated, Writes: applied})
	}
}

// Snapshot returns a coherent copy of one universe's bytes.
func (s *Store) Snapshot(u dmx.UniverseId) ([dmx.UniverseCount]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	buf, ok := s.universes[u]
	if !ok {
		return [dmx.UniverseCount]byte{}, false
	}
	return *buf, true
}

// InitialStates returns a coherent copy of every universe's bytes,
// keyed by id. Used to prime new subscribers and endpoint workers.
func (s *Store) InitialStates() map[dmx.UniverseId][dmx.UniverseCount]byte {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[dmx.UniverseId][dmx.UniverseCount]byte, len(s.universes))
	for id, buf := range s.universes {
		out[id] = *buf
	}
	return out
}

// Universes returns the set of currently known universe ids.
func (s *Store) Universes() []dmx.UniverseId {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]dmx.UniverseId, 0, len(s.universes))
	for id := range s.universes {
		ids = append(ids, id)
	}
	return ids
}

// Subscribe returns a live feed of Update events. The feed is lossy
// under backpressure; subscribers must be able to resync from
// Snapshot/InitialStates.
func (s *Store) Subscribe(bufferSize int) *pubsub.Subscription[Update] {
	return s.bus.Subscribe(bufferSize)
}

// PublishSnapshot emits a full-snapshot Update for one universe,
// typically used after Adapt and when a new subscriber joins.
func (s *Store) PublishSnapshot(u dmx.UniverseId) {
	snap, ok := s.Snapshot(u)
	if !ok {
		return
	}
	s.bus.Publish(Update{Kind: UniverseSnapshot, SnapshotUniverse: u, SnapshotValues: snap})
}
