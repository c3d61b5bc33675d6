// Package effect implements the effect authoring model, the baking
// pipeline that resolves authored tracks into per-fader byte sequences,
// and the player that ticks baked effects into the universe store.
package effect

import (
	"sort"
	"time"

	"github.com/nightforge/lumen/internal/dmx"
)

// Id identifies an authored effect.
type Id string

// EasingKind is one segment descriptor of a curve leaving or entering a
// key. Evaluated for a normalized position in [0,1]; results are
// clamped to [0,1].
type EasingKind int

const (
	Const EasingKind = iota
	Linear
	EaseIn
	EaseOut
	EaseInOut
)

// Easing pairs the descriptor for the segment leaving a key (Out) with
// the descriptor for the segment entering the next key (In). eval(u)
// blends both halves around u=0.5 so a key's own curve choice governs
// its neighborhood symmetrically.
type Easing struct {
	Out EasingKind
	In  EasingKind
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func evalKind(kind EasingKind, u float64) float64 {
	switch kind {
	case Const:
		return 0
	case Linear:
		return u
	case EaseIn:
		return u * u
	case EaseOut:
		return 1 - (1-u)*(1-u)
	case EaseInOut:
		if u < 0.5 {
			return 2 * u * u
		}
		return 1 - pow2(-2*u+2)/2
	default:
		return u
	}
}

func pow2(v float64) float64 { return v * v }

// Eval evaluates this easing pair at normalized position u in [0,1]:
// the first half of the segment follows the leaving key's Out curve,
// the second half follows the entering key's In curve.
func (e Easing) Eval(u float64) float64 {
	u = clamp01(u)
	if e.Out == Const {
		// Const easing holds the leaving key's value until the next key.
		return 0
	}
	if u <= 0.5 {
		return clamp01(evalKind(e.Out, u*2) / 2)
	}
	return clamp01(0.5 + evalKind(e.In, (u-0.5)*2)/2)
}

// FaderKey is one authored keyframe on a FaderTrack.
type FaderKey struct {
	StartTime time.Duration
	Value     uint8
}

// FaderTrack authors a direct fader's value over time. Fader tracks
// always use Const easing: the value holds until the next key.
type FaderTrack struct {
	Address dmx.FaderAddress
	Values  []FaderKey
}

// FeatureKey is one authored keyframe on a FeatureTrack, carrying a
// component-vector value whose arity depends on the track's Detail.
type FeatureKey struct {
	StartTime time.Duration
	Value     [3]float64 // arity used depends on Detail
	Easing    Easing
}

// DetailKind names the shape of a FeatureTrack's values.
type DetailKind int

const (
	SinglePercent DetailKind = iota // 1 component in [0,1]
	SingleRotation                  // 1 component in [-1,1]
	D3Percent                       // 3 components in [0,1]
	D2Rotation                      // 2 components in [-1,1]
)

// FeatureTrack authors one feature across one or more fixtures over
// time, sampled at a fixed resolution and scattered through the
// Feature Mapper into concrete fader writes at bake time.
type FeatureTrack struct {
	Fixtures   []dmx.FixtureId
	Feature    dmx.FeatureKind
	Resolution time.Duration
	Detail     DetailKind
	Keys       []FeatureKey
}

// Track is a closed sum type over the two ways an effect can author
// motion: a direct fader, or a feature across fixtures.
type Track struct {
	Fader   *FaderTrack
	Feature *FeatureTrack
}

// Effect is a time-bounded, possibly looping composition of tracks.
type Effect struct {
	ID       Id
	Name     string
	Duration time.Duration
	Looping  bool
	Tracks   []Track
}

// faderSample is one baked (time, byte) point on a fader's timeline.
type faderSample struct {
	Time  time.Duration
	Value uint8
}

// BakedEffect is the flattened result of baking: for every fader this
// effect touches, a strictly time-sorted sequence of samples in
// [0, MaxTime].
type BakedEffect struct {
	Faders  map[dmx.FaderAddress][]faderSample
	MaxTime time.Duration
	Looping bool
}

// newBakedEffect starts an empty result for the given effect.
func newBakedEffect(e Effect) *BakedEffect {
	return &BakedEffect{
		Faders:  make(map[dmx.FaderAddress][]faderSample),
		MaxTime: e.Duration,
		Looping: e.Looping,
	}
}

// scatter appends a sample for a fader, keeping the effect-wide
// invariant that later-added samples at an equal time win by simply
// replacing the prior sample rather than appending a duplicate time.
func (b *BakedEffect) scatter(addr dmx.FaderAddress, t time.Duration, v uint8) {
	samples := b.Faders[addr]
	if n := len(samples); n > 0 && samples[n-1].Time == t {
		samples[n-1].Value = v
		return
	}
	b.Faders[addr] = append(samples, faderSample{Time: t, Value: v})
}

// sortAll ensures every fader's samples are strictly sorted by time.
// Scatter order during baking is already time-ascending per track, but
// a fader fed by more than one track needs a final stable sort, after
// which samples at an equal time collapse to the later-added one.
func (b *BakedEffect) sortAll() {
	for addr, samples := range b.Faders {
		sort.SliceStable(samples, func(i, j int) bool { return samples[i].Time < samples[j].Time })
		out := samples[:0]
		for _, s := range samples {
			if n := len(out); n > 0 && out[n-1].Time == s.Time {
				out[n-1] = s
				continue
			}
			out = append(out, s)
		}
		b.Faders[addr] = out
	}
}

// ValueAt returns the latest sample at or before t for a fader, if any,
// via a full binary search. Used by tests and one-off lookups; the
// Player uses FaderCursor for its per-tick amortized walk instead.
func (b *BakedEffect) ValueAt(addr dmx.FaderAddress, t time.Duration) (uint8, bool) {
	samples := b.Faders[addr]
	if len(samples) == 0 {
		return 0, false
	}
	// latest sample with Time <= t
	idx := sort.Search(len(samples), func(i int) bool { return samples[i].Time > t }) - 1
	if idx < 0 {
		return 0, false
	}
	return samples[idx].Value, true
}

// FaderCursor walks one fader's sample sequence forward only, amortizing
// lookup cost across a tick loop where time only ever increases (or
// wraps backward exactly once per loop, handled by Reset).
type FaderCursor struct {
	samples []faderSample
	pos     int
}

// NewFaderCursor builds a cursor over a fader's baked samples.
func NewFaderCursor(samples []faderSample) *FaderCursor {
	return &FaderCursor{samples: samples}
}

// Reset rewinds the cursor, used when looping wraps time backward.
func (c *FaderCursor) Reset() { c.pos = 0 }

// ValueAt advances the cursor to the latest sample with Time <= t and
// returns its value. t must be non-decreasing across calls unless Reset
// is called first.
func (c *FaderCursor) ValueAt(t time.Duration) (uint8, bool) {
	n := len(c.samples)
	if n == 0 {
		return 0, false
	}
	for c.pos+1 < n && c.samples[c.pos+1].Time <= t {
		c.pos++
	}
	if c.samples[c.pos].Time > t {
		return 0, false
	}
	return c.samples[c.pos].Value, true
}
