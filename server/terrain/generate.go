package terrain

import "github.com/sablefrost/terra/server/worldstate"

// Generate fills every cell of chunk from the pipeline and marks it
// generated. It is a pure function of (pipeline, chunk coordinates): no
// cross-chunk state is consulted, so chunks may be generated in any order
// or in parallel.
func Generate(p *Pipeline, chunk *worldstate.Chunk) {
	if chunk.Generated {
		return
	}
	for lx := 0; lx < worldstate.Size; lx++ {
		for ly := 0; ly < worldstate.Size; ly++ {
			wx, wy := chunk.WorldX(lx), chunk.WorldY(ly)
			s := p.At(wx, wy)
			chunk.SetTile(lx, ly, worldstate.NewTile(s.Terrain, s.Height, s.Temperature, s.Moisture))
		}
	}
	chunk.Generated = true
	chunk.Modified = false
}
