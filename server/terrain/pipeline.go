// Package terrain implements the deterministic terrain pipeline: the
// function from (seed, world x, world y) to height/temperature/moisture and
// the terrain classification, built from the noise primitives in
// server/noise and the biome strategies in server/biome.
package terrain

import (
	"math"

	"github.com/sablefrost/terra/server/biome"
	"github.com/sablefrost/terra/server/noise"
	"github.com/sablefrost/terra/server/worldstate"
)

// Seed offsets for the nine independent noise fields the pipeline samples.
// Every field is derived from the world seed plus a fixed offset so that a
// single seed deterministically produces all nine without correlating
// them trivially.
const (
	offsetContinental     = 0
	offsetMountain        = 1
	offsetLocalHeight     = 2
	offsetRiver           = 5
	offsetMountainControl = 7
	offsetMacroTemp       = 10
	offsetMacroMoist      = 20
	offsetLocalTemp       = 40
	offsetLocalMoist      = 50
)

// SeaLevel is the continental-value threshold separating ocean from land.
const SeaLevel = 0.42

const (
	scaleContinent = 0.0004
	scaleMacro     = 0.00008
	scaleLocal     = 0.005
	scaleRiver     = 0.001
)

// Sample is the resolved environment of a single world tile, everything
// the classifier and the tile constructor need.
type Sample struct {
	Height      float64
	Temperature float64
	Moisture    float64
	IsRiver     bool
	Terrain     worldstate.TerrainType
}

// Pipeline computes terrain deterministically from a seed. It holds no
// state besides its nine noise fields and the two biome strategies it
// blends between; generating a tile never consults any other tile.
type Pipeline struct {
	seed int64

	continental     *noise.Field
	mountain        *noise.Field
	localHeight     *noise.Field
	river           *noise.Field
	mountainControl *noise.Field
	macroTemp       *noise.Field
	macroMoist      *noise.Field
	localTemp       *noise.Field
	localMoist      *noise.Field

	standard biome.Strategy
	desert   biome.Strategy
}

// New builds a Pipeline for seed. Construction is cheap relative to
// sampling; callers typically build one Pipeline per world and share it.
func New(seed int64) *Pipeline {
	return &Pipeline{
		seed:            seed,
		continental:     noise.New(seed + offsetContinental),
		mountain:        noise.New(seed + offsetMountain),
		localHeight:     noise.New(seed + offsetLocalHeight),
		river:           noise.New(seed + offsetRiver),
		mountainControl: noise.New(seed + offsetMountainControl),
		macroTemp:       noise.New(seed + offsetMacroTemp),
		macroMoist:      noise.New(seed + offsetMacroMoist),
		localTemp:       noise.New(seed + offsetLocalTemp),
		localMoist:      noise.New(seed + offsetLocalMoist),
		standard:        biome.Standard{},
		desert:          biome.Desert{},
	}
}

// Seed returns the seed the Pipeline was built with.
func (p *Pipeline) Seed() int64 { return p.seed }

// At computes the full environment at world coordinates (wx,wy). It is a
// pure function of (seed, wx, wy): calling it twice, in any order, and
// regardless of whether neighbouring chunks have been sampled, yields
// bit-identical results.
func (p *Pipeline) At(wx, wy int32) Sample {
	x, y := float64(wx), float64(wy)

	continental := p.continentalValue(x, y)
	macroTemp := p.macroTemp.Octave(x, y, 2, 0.5, scaleMacro)
	macroMoist := p.macroMoist.Octave(x, y, 2, 0.5, scaleMacro)

	isLand := continental > SeaLevel

	var height float64
	if !isLand {
		height = p.oceanHeight(continental, x, y)
	} else {
		landFactor := (continental - SeaLevel) / (1 - SeaLevel)
		height = p.landHeight(x, y, landFactor, macroTemp, macroMoist)
	}

	temperature := p.resolveTemperature(x, y, macroTemp, height)
	moisture := p.resolveMoisture(x, y, macroMoist)

	isRiver := false
	if strength := p.riverStrength(x, y, height, macroMoist); strength > 0 {
		isRiver = true
		depth := 0.06 * strength
		height -= depth
		if height < 0.2 {
			height = 0.2
		}
	}
	height = clamp01(height)

	return Sample{
		Height:      height,
		Temperature: temperature,
		Moisture:    moisture,
		IsRiver:     isRiver,
		Terrain:     worldstate.Classify(height, temperature, moisture, isRiver),
	}
}

// continentalValue domain-warps (x,y) with the continent field sampled at
// scale 1e-4 and amplitude 200, then sums 4 octaves of the warped position.
func (p *Pipeline) continentalValue(x, y float64) float64 {
	wx := x + p.continental.Noise(x*0.0001, y*0.0001)*200
	wy := y + p.continental.Noise(y*0.0001, x*0.0001)*200
	return p.continental.Octave(wx, wy, 4, 0.5, scaleContinent)
}

func (p *Pipeline) oceanHeight(continental, x, y float64) float64 {
	factor := continental / SeaLevel
	base := 0.1 + 0.28*factor
	ripple := 0.02 * p.localHeight.Octave(x, y, 2, 0.5, 0.02)
	return math.Min(0.39, base+ripple)
}

func (p *Pipeline) landHeight(x, y, landFactor, macroTemp, macroMoist float64) float64 {
	desertScore := 0.0
	if macroTemp > 0.55 && macroMoist < 0.45 {
		dry := (0.45 - macroMoist) / 0.45
		hot := (macroTemp - 0.55) / 0.45
		desertScore = math.Min(1, (dry+hot)/2*1.5)
	}

	rangeControl := p.mountainControl.Octave(x, y, 2, 0.5, 0.0003)
	mountainMask := math.Max(0, (rangeControl-0.20)/0.80)
	mountainMask = math.Min(mountainMask, landFactor*5)

	baseLand := SeaLevel + 0.02 + 0.1*landFactor

	hDesert := p.desert.Height(x, y, baseLand, mountainMask, p.localHeight, p.mountain)
	hStandard := p.standard.Height(x, y, baseLand, mountainMask, p.localHeight, p.mountain)

	return hStandard*(1-desertScore) + hDesert*desertScore
}

func (p *Pipeline) resolveTemperature(x, y, macroTemp, height float64) float64 {
	local := p.localTemp.Noise(x*0.01, y*0.01) * 0.05
	base := macroTemp + local
	cooling := math.Max(0, height-0.5) * 0.4
	return clamp01(base - cooling)
}

func (p *Pipeline) resolveMoisture(x, y, macroMoist float64) float64 {
	local := p.localMoist.Noise(x*0.01, y*0.01) * 0.05
	if macroMoist < 0.3 {
		result := macroMoist + local
		if result > 0.42 {
			result = 0.42
		}
		return math.Max(0, result)
	}
	return clamp01(macroMoist + local)
}

// riverStrength returns 0 when no river carves this tile, otherwise a
// value in (0,1] describing how deep the channel should cut.
func (p *Pipeline) riverStrength(x, y, height, macroMoist float64) float64 {
	if height < SeaLevel-0.02 {
		return 0
	}
	threshold := 0.985
	if macroMoist < 0.35 {
		dryness := (0.35 - macroMoist) / 0.15
		threshold += dryness * 0.1
	}
	if threshold >= 1 {
		return 0
	}
	val := p.river.Octave(x, y, 4, 0.5, scaleRiver)
	ridge := 1 - math.Abs(val-0.5)*2
	if ridge < threshold {
		return 0
	}
	return (ridge - threshold) / (1 - threshold)
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
