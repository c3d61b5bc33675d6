package effect

import (
	"log"
	"time"

	"github.com/nightforge/lumen/internal/dmx"
)

// FixtureLookup resolves a fixture id to its patched fixture, across
// whatever universe it lives in. The baker never reaches into project
// state directly: it is handed this lookup (and nothing else) once per
// bake, built from a snapshot taken by the caller.
type FixtureLookup interface {
	Fixture(id dmx.FixtureId) (dmx.PatchedFixture, bool)
}

// Bake resolves an authored Effect against a fixture snapshot into a
// BakedEffect. Baking never fails: a missing fixture or feature is
// logged and that fixture is skipped for that track, and a degenerate
// effect simply produces empty fader maps.
func Bake(e Effect, fixtures FixtureLookup) *BakedEffect {
	baked := newBakedEffect(e)

	for _, track := range e.Tracks {
		switch {
		case track.Fader != nil:
			bakeFaderTrack(baked, *track.Fader, e.Duration)
		case track.Feature != nil:
			bakeFeatureTrack(baked, *track.Feature, e.Duration, fixtures)
		}
	}

	baked.sortAll()
	return baked
}

// bakeFaderTrack copies in-range keys straight into the fader's baked
// sequence: a FaderTrack's "easing" is Const by construction, so the
// key values themselves already are the step function.
func bakeFaderTrack(baked *BakedEffect, track FaderTrack, duration time.Duration) {
	for _, key := range track.Values {
		if key.StartTime < 0 || key.StartTime > duration {
			continue
		}
		baked.scatter(track.Address, key.StartTime, key.Value)
	}
}

// bakeFeatureTrack samples a feature track at its resolution, resolves
// the interpolated value at each sample through the Feature Mapper for
// every fixture in the track, and scatters the resulting fader writes.
func bakeFeatureTrack(baked *BakedEffect, track FeatureTrack, duration time.Duration, fixtures FixtureLookup) {
	if track.Resolution <= 0 || len(track.Keys) == 0 {
		return
	}

	for t := time.Duration(0); t <= duration; t += track.Resolution {
		value := sampleFeatureTrack(track, t)

		for _, fxID := range track.Fixtures {
			fixture, ok := fixtures.Fixture(fxID)
			if !ok {
				log.Printf("effect bake: fixture %q not found, skipping for this track", fxID)
				continue
			}
			feature, ok := fixture.Feature(track.Feature)
			if !ok {
				log.Printf("effect bake: fixture %q has no %s feature, skipping", fxID, track.Feature)
				continue
			}

			for _, write := range mapFeatureValue(feature, track.Detail, value) {
				baked.scatter(write.Fader, t, write.Value)
			}
		}
	}
}

// sampleFeatureTrack evaluates a feature track's keys at time t: finds
// the bracketing in/out keys, composes their easing, and interpolates
// the component-wise value. Absent keys fall back to the declared
// zero default (0 for percentages and rotations alike).
func sampleFeatureTrack(track FeatureTrack, t time.Duration) [3]float64 {
	var inKey, outKey *FeatureKey
	for i := range track.Keys {
		k := &track.Keys[i]
		if k.StartTime <= t && (inKey == nil || k.StartTime > inKey.StartTime) {
			inKey = k
		}
		if k.StartTime > t && (outKey == nil || k.StartTime < outKey.StartTime) {
			outKey = k
		}
	}

	switch {
	case inKey == nil && outKey == nil:
		return [3]float64{}
	case inKey == nil:
		return [3]float64{}
	case outKey == nil:
		return inKey.Value
	}

	span := outKey.StartTime - inKey.StartTime
	if span <= 0 {
		return inKey.Value
	}
	u := float64(t-inKey.StartTime) / float64(span)
	easing := Easing{Out: inKey.Easing.Out, In: outKey.Easing.In}
	a := clamp01(easing.Eval(u))

	var result [3]float64
	for i := range result {
		result[i] = inKey.Value[i] + a*(outKey.Value[i]-inKey.Value[i])
	}
	return result
}

// mapFeatureValue dispatches a sampled component vector to the Feature
// Mapper according to the track's declared detail shape.
func mapFeatureValue(feature dmx.FixtureFeature, detail DetailKind, v [3]float64) []dmx.FaderWrite {
	switch detail {
	case SinglePercent:
		return dmx.MapSingle(feature, v[0])
	case SingleRotation:
		return dmx.MapRotation(feature, v[0])
	case D3Percent:
		return dmx.MapRgb(feature, v[0], v[1], v[2])
	case D2Rotation:
		return dmx.MapPanTilt(feature, v[0], v[1])
	default:
		return nil
	}
}
