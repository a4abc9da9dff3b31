// Package biome provides the height-shaping strategies the terrain pipeline
// blends between. Each strategy is stateless; it reads noise samples from
// the fields handed to it and never caches or mutates shared state.
package biome

import "github.com/sablefrost/terra/server/noise"

// Strategy shapes land height for a biome family and states whether that
// family permits river carving. Implementations are pure functions of their
// arguments and hold no state of their own.
type Strategy interface {
	// Height returns the land height at world coordinates (wx,wy) given the
	// base land height, the mountain mask already computed for this tile,
	// and the two noise fields the strategy samples at its own octave
	// parameters (hillField for dunes/hills, mountainField for ridges).
	Height(wx, wy, baseLand, mountainMask float64, hillField, mountainField *noise.Field) float64
	// AllowsRivers reports whether river carving may run over this biome's
	// output height.
	AllowsRivers() bool
}

// ridge sharpens a raw [0,1] ridge value into a steeper peak, shared by both
// strategies' mountain term.
func ridge(raw float64) float64 {
	return raw * raw * raw
}
