package biome

import "github.com/sablefrost/terra/server/noise"

// Desert shapes land as shallow dunes plus the same mountain ridge term as
// Standard. Rivers never form over desert land.
type Desert struct{}

// Height implements Strategy.
func (Desert) Height(wx, wy, baseLand, mountainMask float64, hillField, mountainField *noise.Field) float64 {
	dunes := (hillField.Octave(wx, wy, 2, 0.5, 0.02) - 0.5) * 0.02
	rawRidge := 1 - abs(mountainField.Octave(wx, wy, 5, 0.5, 0.002)-0.5)*2
	mountain := ridge(rawRidge)
	return baseLand + dunes + 0.48*mountain*mountainMask
}

// AllowsRivers implements Strategy.
func (Desert) AllowsRivers() bool { return false }
