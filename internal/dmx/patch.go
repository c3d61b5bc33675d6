package dmx

// FixtureId identifies a patched fixture instance.
type FixtureId string

// PatchedFixture is a logical lighting device occupying a contiguous
// channel range in one universe and exposing a set of features.
type PatchedFixture struct {
	ID           FixtureId
	Name         string
	Universe     UniverseId
	StartChannel UniverseAddress
	ChannelCount int
	Features     map[FeatureKind]FixtureFeature
}

// Feature looks up one of the fixture's features by kind.
func (f PatchedFixture) Feature(kind FeatureKind) (FixtureFeature, bool) {
	feat, ok := f.Features[kind]
	return feat, ok
}

// patchSlot records which fixture owns one channel of a universe. It
// does not record the channel's offset within that fixture.
type patchSlot struct {
	fixtureIndex int
	occupied     bool
}

// FixtureUniverse is the patch layout for one universe: a fixed
// 512-slot map from channel to owning fixture, plus the fixture list
// itself.
type FixtureUniverse struct {
	ID       UniverseId
	slots    [UniverseCount]patchSlot
	Fixtures []PatchedFixture
}

// NewFixtureUniverse builds a FixtureUniverse from a fixture list,
// deriving the channel-occupancy slots from each fixture's start
// channel and channel count. Overlapping fixtures silently let the
// later one in the list win a contested slot.
func NewFixtureUniverse(id UniverseId, fixtures []PatchedFixture) FixtureUniverse {
	fu := FixtureUniverse{ID: id, Fixtures: fixtures}
	for i, fx := range fixtures {
		start := fx.StartChannel.Int()
		for ch := start; ch < start+fx.ChannelCount && ch < UniverseCount; ch++ {
			fu.slots[ch] = patchSlot{fixtureIndex: i, occupied: true}
		}
	}
	return fu
}

// FixtureAt returns the fixture occupying a channel, if any.
func (fu FixtureUniverse) FixtureAt(addr UniverseAddress) (PatchedFixture, bool) {
	slot := fu.slots[addr.Int()]
	if !slot.occupied {
		return PatchedFixture{}, false
	}
	return fu.Fixtures[slot.fixtureIndex], true
}

// ByID finds a fixture by id within this universe's patch.
func (fu FixtureUniverse) ByID(id FixtureId) (PatchedFixture, bool) {
	for _, fx := range fu.Fixtures {
		if fx.ID == id {
			return fx, true
		}
	}
	return PatchedFixture{}, false
}
