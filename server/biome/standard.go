package biome

import "github.com/sablefrost/terra/server/noise"

// Standard is the default land-shaping strategy: gentle hills plus sharpened
// mountain ridges gated by the mountain mask. Rivers are permitted.
type Standard struct{}

// Height implements Strategy.
func (Standard) Height(wx, wy, baseLand, mountainMask float64, hillField, mountainField *noise.Field) float64 {
	hills := (hillField.Octave(wx, wy, 4, 0.5, 0.01) - 0.5) * 2
	rawRidge := 1 - abs(mountainField.Octave(wx, wy, 5, 0.5, 0.002)-0.5)*2
	mountain := ridge(rawRidge)
	return baseLand + 0.05*hills + 0.48*mountain*mountainMask
}

// AllowsRivers implements Strategy.
func (Standard) AllowsRivers() bool { return true }

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
