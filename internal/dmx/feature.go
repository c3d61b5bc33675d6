package dmx

// FeatureTile describes how a single control dimension is wired onto
// DMX channels: one channel at 8-bit resolution, or two/three channels
// split coarse/fine/grain for finer resolution.
type FeatureTile struct {
	Resolution ValueResolution
	Range      DmxRange
	Coarse     FaderAddress
	Fine       FaderAddress // only meaningful for U16/U24
	Grain      FaderAddress // only meaningful for U24
}

// NewSingleTile builds an 8-bit tile addressed at a single fader.
func NewSingleTile(fader FaderAddress, r DmxRange) FeatureTile {
	return FeatureTile{Resolution: U8, Range: r, Coarse: fader}
}

// NewDoubleTile builds a 16-bit coarse/fine tile.
func NewDoubleTile(coarse, fine FaderAddress, r DmxRange) FeatureTile {
	return FeatureTile{Resolution: U16, Range: r, Coarse: coarse, Fine: fine}
}

// NewTripleTile builds a 24-bit coarse/fine/grain tile.
func NewTripleTile(coarse, fine, grain FaderAddress, r DmxRange) FeatureTile {
	return FeatureTile{Resolution: U24, Range: r, Coarse: coarse, Fine: fine, Grain: grain}
}

// Faders returns the tile's fader addresses in coarse, fine, grain order,
// truncated to however many channels the resolution actually uses.
func (t FeatureTile) Faders() []FaderAddress {
	switch t.Resolution {
	case U16:
		return []FaderAddress{t.Coarse, t.Fine}
	case U24:
		return []FaderAddress{t.Coarse, t.Fine, t.Grain}
	default:
		return []FaderAddress{t.Coarse}
	}
}

// FeatureKind tags the closed set of fixture feature variants.
type FeatureKind int

const (
	KindDimmer FeatureKind = iota
	KindWhite
	KindAmber
	KindRgb
	KindRotation
	KindPanTilt
)

func (k FeatureKind) String() string {
	switch k {
	case KindDimmer:
		return "dimmer"
	case KindWhite:
		return "white"
	case KindAmber:
		return "amber"
	case KindRgb:
		return "rgb"
	case KindRotation:
		return "rotation"
	case KindPanTilt:
		return "pan_tilt"
	default:
		return "unknown"
	}
}

// FixtureFeature is a closed, tagged variant over the feature kinds a
// patched fixture can expose. Exactly the fields relevant to Kind are
// populated. Each Map* function reads the fields of one variant; the
// baker chooses which to call from the track's DetailKind, not from Kind.
type FixtureFeature struct {
	Kind FeatureKind

	// Dimmer, White, Amber
	Single FeatureTile

	// Rgb
	Red, Green, Blue FeatureTile

	// Rotation
	CW, CCW FeatureTile

	// PanTilt
	Pan, Tilt FeatureTile
}

// NewDimmerFeature builds a Dimmer-kind feature over a single tile.
func NewDimmerFeature(tile FeatureTile) FixtureFeature {
	return FixtureFeature{Kind: KindDimmer, Single: tile}
}

// NewWhiteFeature builds a White-kind feature over a single tile.
func NewWhiteFeature(tile FeatureTile) FixtureFeature {
	return FixtureFeature{Kind: KindWhite, Single: tile}
}

// NewAmberFeature builds an Amber-kind feature over a single tile.
func NewAmberFeature(tile FeatureTile) FixtureFeature {
	return FixtureFeature{Kind: KindAmber, Single: tile}
}

// NewRgbFeature builds an Rgb-kind feature over three tiles.
func NewRgbFeature(red, green, blue FeatureTile) FixtureFeature {
	return FixtureFeature{Kind: KindRgb, Red: red, Green: green, Blue: blue}
}

// NewRotationFeature builds a Rotation-kind feature over cw/ccw tiles.
func NewRotationFeature(cw, ccw FeatureTile) FixtureFeature {
	return FixtureFeature{Kind: KindRotation, CW: cw, CCW: ccw}
}

// NewPanTiltFeature builds a PanTilt-kind feature over pan/tilt tiles.
func NewPanTiltFeature(pan, tilt FeatureTile) FixtureFeature {
	return FixtureFeature{Kind: KindPanTilt, Pan: pan, Tilt: tilt}
}
