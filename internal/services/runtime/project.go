package runtime

import (
	"github.com/nightforge/lumen/internal/dmx"
	"github.com/nightforge/lumen/internal/services/effect"
	"github.com/nightforge/lumen/internal/services/endpoint"
)

// Project is the external-state snapshot Adapt consumes. Callers
// (persistence, the configuration API) build this from their own
// storage and hand it to Adapt as a single atomic unit.
type Project struct {
	Universes      []dmx.UniverseId
	UniversePatch  map[dmx.UniverseId]dmx.FixtureUniverse
	EndpointConfig map[dmx.UniverseId][]endpoint.ConfigItem
	Effects        []effect.Effect
}

// fixtureSnapshot is the FixtureLookup handed to the baker on every
// EffectsChanged: a flat, copied view across every universe's patch so
// the baker never reaches back into Project state.
type fixtureSnapshot struct {
	byID map[dmx.FixtureId]dmx.PatchedFixture
}

func newFixtureSnapshot(patch map[dmx.UniverseId]dmx.FixtureUniverse) *fixtureSnapshot {
	snap := &fixtureSnapshot{byID: make(map[dmx.FixtureId]dmx.PatchedFixture)}
	for _, fu := range patch {
		for _, fx := range fu.Fixtures {
			snap.byID[fx.ID] = fx
		}
	}
	return snap
}

func (s *fixtureSnapshot) Fixture(id dmx.FixtureId) (dmx.PatchedFixture, bool) {
	fx, ok := s.byID[id]
	return fx, ok
}
