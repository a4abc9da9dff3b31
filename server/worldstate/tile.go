package worldstate

// Tile is a single cell of a Chunk. Its terrain/height/temperature/moisture
// fields are set once by the terrain pipeline at generation time; its
// owner/structure/content/rotation fields are gameplay state a client may
// mutate after the fact.
type Tile struct {
	Terrain TerrainType

	// Height, Temperature and Moisture are all normalized to [0,1].
	Height      float64
	Temperature float64
	Moisture    float64

	// OwnerID is a player or faction identifier; -1 means unclaimed.
	OwnerID int64
	// StructureID identifies a structure occupying the tile; 0 means none.
	StructureID int32
	// ContentAmount is a generic resource/storage counter.
	ContentAmount int32
	// Rotation is the facing of whatever StructureID refers to.
	Rotation int8
}

// UnclaimedOwner is the sentinel OwnerID of a tile nobody has claimed.
const UnclaimedOwner int64 = -1

// NewTile returns a freshly generated tile with default ownership state.
func NewTile(terrain TerrainType, height, temperature, moisture float64) Tile {
	return Tile{
		Terrain:     terrain,
		Height:      height,
		Temperature: temperature,
		Moisture:    moisture,
		OwnerID:     UnclaimedOwner,
	}
}

// Claimed reports whether the tile has an owner.
func (t Tile) Claimed() bool { return t.OwnerID != UnclaimedOwner }

// HasStructure reports whether the tile carries a structure.
func (t Tile) HasStructure() bool { return t.StructureID != 0 }
