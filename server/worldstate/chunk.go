package worldstate

// Size is the edge length of a chunk, in tiles.
const Size = 16

// RegionSize is the edge length of a region, in chunks.
const RegionSize = 32

// Chunk is a Size*Size grid of tiles plus the header fields described in
// the data model: coordinates, whether it has been generated, and whether
// a client edit has ever touched it.
type Chunk struct {
	CX, CY int32

	tiles   [Size][Size]Tile
	present [Size][Size]bool

	Generated bool
	// Modified is set the moment a client mutates a tile; generation itself
	// never sets it. It is the sole signal the wire server uses to decide
	// between CHUNK_DATA and CHUNK_PROCEDURAL.
	Modified bool
}

// NewChunk returns an empty, non-generated chunk at the given coordinates.
func NewChunk(cx, cy int32) *Chunk {
	return &Chunk{CX: cx, CY: cy}
}

// Tile returns the tile at local coordinates (lx,ly). Panics if either is
// outside [0,Size) - callers within this module always pass validated
// coordinates, and the wire layer never accepts raw local coordinates.
func (c *Chunk) Tile(lx, ly int) Tile {
	return c.tiles[lx][ly]
}

// SetTile stores t at local coordinates (lx,ly) and marks the cell present.
func (c *Chunk) SetTile(lx, ly int, t Tile) {
	c.tiles[lx][ly] = t
	c.present[lx][ly] = true
}

// Present reports whether a tile has ever been written at (lx,ly). A
// generated chunk has every cell present; a freshly created, ungenerated
// chunk has none.
func (c *Chunk) Present(lx, ly int) bool {
	return c.present[lx][ly]
}

// WorldX returns the world-space X coordinate of local column lx.
func (c *Chunk) WorldX(lx int) int32 { return c.CX*Size + int32(lx) }

// WorldY returns the world-space Y coordinate of local row ly.
func (c *Chunk) WorldY(ly int) int32 { return c.CY*Size + int32(ly) }

// RegionCoords returns the (rx,ry) of the region a chunk at (cx,cy) belongs
// to, using floor division so negative coordinates resolve correctly.
func RegionCoords(cx, cy int32) (rx, ry int32) {
	return floorDiv(cx, RegionSize), floorDiv(cy, RegionSize)
}

// LocalCoords returns the (lx,ly) of a chunk within its region, in [0,32).
func LocalCoords(cx, cy int32) (lx, ly int32) {
	return floorMod(cx, RegionSize), floorMod(cy, RegionSize)
}

func floorDiv(a, b int32) int32 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int32) int32 {
	m := a % b
	if m != 0 && ((m < 0) != (b < 0)) {
		m += b
	}
	return m
}

// Key packs (cx,cy) into the single int64 the cache indexes chunks by: cx in the high 32 bits, the unsigned low half of cy in the low 32.
func Key(cx, cy int32) int64 {
	return int64(uint64(uint32(cx))<<32 | uint64(uint32(cy)))
}

// UnpackKey reverses Key.
func UnpackKey(key int64) (cx, cy int32) {
	u := uint64(key)
	return int32(uint32(u >> 32)), int32(uint32(u))
}
