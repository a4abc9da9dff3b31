// Package worldstate holds the tile, chunk, codec and cache types
// the rest of the server builds on: everything that describes or moves a
// chunk once the terrain pipeline has produced it.
package worldstate

// TerrainType is a tag drawn from a closed enumeration of biomes. The
// ordinal of a TerrainType is persisted on disk and on the wire, so the
// order below must never change; append new biomes at the end.
type TerrainType uint8

const (
	DeepOcean TerrainType = iota
	Ocean
	ShallowWater
	Beach
	Tundra
	Taiga
	Grassland
	Desert
	Savanna
	TropicalForest
	TemperateForest
	Shrubland
	Woodland
	Hills
	Mountain
	SnowMountain
	River
	Lake
	Swamp
	Steppe
	Rainforest

	terrainTypeCount
)

// String returns the human-readable name of the terrain type.
func (t TerrainType) String() string {
	if int(t) < len(terrainNames) {
		return terrainNames[t]
	}
	return "Unknown"
}

// Valid reports whether t is one of the known enumeration members.
func (t TerrainType) Valid() bool {
	return t < terrainTypeCount
}

var terrainNames = [...]string{
	DeepOcean:       "DeepOcean",
	Ocean:           "Ocean",
	ShallowWater:    "ShallowWater",
	Beach:           "Beach",
	Tundra:          "Tundra",
	Taiga:           "Taiga",
	Grassland:       "Grassland",
	Desert:          "Desert",
	Savanna:         "Savanna",
	TropicalForest:  "TropicalForest",
	TemperateForest: "TemperateForest",
	Shrubland:       "Shrubland",
	Woodland:        "Woodland",
	Hills:           "Hills",
	Mountain:        "Mountain",
	SnowMountain:    "SnowMountain",
	River:           "River",
	Lake:            "Lake",
	Swamp:           "Swamp",
	Steppe:          "Steppe",
	Rainforest:      "Rainforest",
}

// Classify resolves a terrain tag from height/temperature/moisture and the
// river flag. Rules are evaluated in priority order; the first match wins,
// and the order is part of the contract - reordering these branches changes world generation for every seed.
func Classify(height, temperature, moisture float64, isRiver bool) TerrainType {
	if isRiver && height > 0.4 && height < 0.92 {
		return River
	}
	if height < 0.3 {
		return DeepOcean
	}
	if height < 0.38 {
		return Ocean
	}
	if height < 0.42 {
		return ShallowWater
	}
	if height > 0.92 {
		return SnowMountain
	}
	if height > 0.85 {
		if temperature < 0.25 {
			return SnowMountain
		}
		return Mountain
	}
	if height > 0.75 {
		if temperature < 0.3 {
			return Mountain
		}
		if moisture < 0.3 {
			return Shrubland
		}
		return Woodland
	}
	if height > 0.65 {
		return Hills
	}
	if height > 0.55 {
		if moisture < 0.35 {
			return Shrubland
		}
		return Woodland
	}
	if temperature < 0.15 && height > 0.5 {
		return Tundra
	}
	if temperature < 0.3 {
		if moisture > 0.4 {
			return Taiga
		}
		return Grassland
	}
	if temperature < 0.6 {
		if moisture < 0.3 {
			return Grassland
		}
		return TemperateForest
	}
	if moisture < 0.45 {
		return Desert
	}
	if moisture < 0.65 {
		return Savanna
	}
	if height > 0.4 && height < 0.5 && moisture > 0.7 {
		return Swamp
	}
	if height > 0.5 && height < 0.6 && moisture < 0.3 && temperature > 0.4 {
		return Steppe
	}
	if temperature > 0.7 && moisture > 0.7 {
		return Rainforest
	}
	return Grassland
}
