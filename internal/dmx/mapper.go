package dmx

// FaderWrite is one concrete byte write produced by the mapper.
type FaderWrite struct {
	Fader FaderAddress
	Value uint8
}

// MapTile projects a normalized value v (already clamped to [0,1] by
// the caller, or expected to be) onto the tile's fader(s), returning
// the coarse/fine/grain writes MSB-first.
func MapTile(tile FeatureTile, v float64) []FaderWrite {
	raw := tile.Resolution.Resolve(v, tile.Range)
	bytes := tile.Resolution.Split(raw)
	faders := tile.Faders()

	writes := make([]FaderWrite, len(faders))
	for i := range faders {
		writes[i] = FaderWrite{Fader: faders[i], Value: bytes[i]}
	}
	return writes
}

// MapSingle maps a Dimmer/White/Amber feature at percentage p.
func MapSingle(f FixtureFeature, p float64) []FaderWrite {
	return MapTile(f.Single, p)
}

// MapRgb maps an Rgb feature, one independent tile per channel.
func MapRgb(f FixtureFeature, r, g, b float64) []FaderWrite {
	var writes []FaderWrite
	writes = append(writes, MapTile(f.Red, r)...)
	writes = append(writes, MapTile(f.Green, g)...)
	writes = append(writes, MapTile(f.Blue, b)...)
	return writes
}

// MapRotation maps a signed rotation input v in [-1,1]. Non-negative
// values (including zero) drive the cw tile with their magnitude;
// negative values drive the ccw tile.
func MapRotation(f FixtureFeature, v float64) []FaderWrite {
	if v >= 0 {
		return MapTile(f.CW, v)
	}
	return MapTile(f.CCW, -v)
}

// MapPanTilt maps a PanTilt feature. Pan and tilt each arrive signed in
// [-1,1] (full sweep about center) and are affine-remapped to [0,1]
// before tile resolution, since a pan/tilt tile has no separate
// direction channel the way Rotation does.
func MapPanTilt(f FixtureFeature, pan, tilt float64) []FaderWrite {
	var writes []FaderWrite
	writes = append(writes, MapTile(f.Pan, signedToUnit(pan))...)
	writes = append(writes, MapTile(f.Tilt, signedToUnit(tilt))...)
	return writes
}

func signedToUnit(v float64) float64 {
	return (v + 1) / 2
}
