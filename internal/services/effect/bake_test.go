package effect

import (
	"testing"
	"time"

	"github.com/nightforge/lumen/internal/dmx"
)

type fakeFixtures map[dmx.FixtureId]dmx.PatchedFixture

func (f fakeFixtures) Fixture(id dmx.FixtureId) (dmx.PatchedFixture, bool) {
	fx, ok := f[id]
	return fx, ok
}

func faderAt(u dmx.UniverseId, ch int) dmx.FaderAddress {
	addr, err := dmx.NewUniverseAddress(ch)
	if err != nil {
		panic(err)
	}
	return dmx.FaderAddress{Universe: u, Address: addr}
}

// S1 — single fader effect, non-looping, Const easing.
func TestBakeFaderTrack_S1(t *testing.T) {
	addr := faderAt(1, 0)
	e := Effect{
		ID:       "e1",
		Duration: 1000 * time.Millisecond,
		Tracks: []Track{
			{Fader: &FaderTrack{
				Address: addr,
				Values: []FaderKey{
					{StartTime: 0, Value: 0},
					{StartTime: 1000 * time.Millisecond, Value: 255},
				},
			}},
		},
	}

	baked := Bake(e, fakeFixtures{})

	if v, ok := baked.ValueAt(addr, 500*time.Millisecond); !ok || v != 0 {
		t.Errorf("ValueAt(500ms) = (%d,%v), want (0,true) — const holds last key", v, ok)
	}
	if v, ok := baked.ValueAt(addr, 1000*time.Millisecond); !ok || v != 255 {
		t.Errorf("ValueAt(1000ms) = (%d,%v), want (255,true)", v, ok)
	}
}

// S2 — feature track, linear easing, round-to-nearest at the midpoint.
func TestBakeFeatureTrack_S2(t *testing.T) {
	addr := faderAt(1, 0)
	fixture := dmx.PatchedFixture{
		ID: "fx1",
		Features: map[dmx.FeatureKind]dmx.FixtureFeature{
			dmx.KindDimmer: dmx.NewDimmerFeature(dmx.NewSingleTile(addr, dmx.FullRange())),
		},
	}

	e := Effect{
		ID:       "e2",
		Duration: 1000 * time.Millisecond,
		Tracks: []Track{
			{Feature: &FeatureTrack{
				Fixtures:   []dmx.FixtureId{"fx1"},
				Feature:    dmx.KindDimmer,
				Resolution: 100 * time.Millisecond,
				Detail:     SinglePercent,
				Keys: []FeatureKey{
					{StartTime: 0, Value: [3]float64{0}, Easing: Easing{Out: Linear, In: Linear}},
					{StartTime: 1000 * time.Millisecond, Value: [3]float64{1}, Easing: Easing{Out: Linear, In: Linear}},
				},
			}},
		},
	}

	baked := Bake(e, fakeFixtures{"fx1": fixture})

	v, ok := baked.ValueAt(addr, 500*time.Millisecond)
	if !ok {
		t.Fatal("expected a sample at 500ms")
	}
	if v != 127 && v != 128 {
		t.Errorf("ValueAt(500ms) = %d, want 127 or 128", v)
	}
}

func TestBakeMissingFixtureIsSkippedNotFatal(t *testing.T) {
	e := Effect{
		Duration: 100 * time.Millisecond,
		Tracks: []Track{
			{Feature: &FeatureTrack{
				Fixtures:   []dmx.FixtureId{"missing"},
				Feature:    dmx.KindDimmer,
				Resolution: 50 * time.Millisecond,
				Detail:     SinglePercent,
				Keys:       []FeatureKey{{StartTime: 0, Value: [3]float64{1}}},
			}},
		},
	}

	baked := Bake(e, fakeFixtures{})
	if len(baked.Faders) != 0 {
		t.Errorf("expected no faders baked for a missing fixture, got %v", baked.Faders)
	}
}

func TestBakeZeroDurationEffectProducesNoTicks(t *testing.T) {
	addr := faderAt(1, 0)
	e := Effect{
		Duration: 0,
		Tracks: []Track{
			{Fader: &FaderTrack{Address: addr, Values: []FaderKey{{StartTime: 0, Value: 100}}}},
		},
	}
	baked := Bake(e, fakeFixtures{})
	if baked.MaxTime != 0 {
		t.Errorf("MaxTime = %v, want 0", baked.MaxTime)
	}
}

func TestFaderCursorMonotonicWalk(t *testing.T) {
	addr := faderAt(1, 0)
	e := Effect{
		Duration: 300 * time.Millisecond,
		Tracks: []Track{
			{Fader: &FaderTrack{
				Address: addr,
				Values: []FaderKey{
					{StartTime: 0, Value: 1},
					{StartTime: 100 * time.Millisecond, Value: 2},
					{StartTime: 200 * time.Millisecond, Value: 3},
				},
			}},
		},
	}
	baked := Bake(e, fakeFixtures{})
	cursor := NewFaderCursor(baked.Faders[addr])

	for _, tc := range []struct {
		t    time.Duration
		want uint8
	}{
		{0, 1},
		{50 * time.Millisecond, 1},
		{100 * time.Millisecond, 2},
		{250 * time.Millisecond, 3},
	} {
		v, ok := cursor.ValueAt(tc.t)
		if !ok || v != tc.want {
			t.Errorf("cursor.ValueAt(%v) = (%d,%v), want (%d,true)", tc.t, v, ok, tc.want)
		}
	}
}
