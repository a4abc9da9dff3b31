package terrain

import (
	"testing"

	"github.com/sablefrost/terra/server/worldstate"
)

func TestGenerateFillsEveryTile(t *testing.T) {
	p := New(42)
	chunk := worldstate.NewChunk(3, -2)

	Generate(p, chunk)

	if !chunk.Generated {
		t.Fatal("expected chunk.Generated to be true after Generate")
	}
	if chunk.Modified {
		t.Fatal("expected a freshly generated chunk to be unmodified")
	}
	for lx := 0; lx < worldstate.Size; lx++ {
		for ly := 0; ly < worldstate.Size; ly++ {
			if !chunk.Present(lx, ly) {
				t.Fatalf("tile (%d,%d) not present after Generate", lx, ly)
			}
		}
	}
}

func TestGenerateIsIdempotent(t *testing.T) {
	p := New(42)
	chunk := worldstate.NewChunk(0, 0)
	Generate(p, chunk)

	original := chunk.Tile(5, 5)
	chunk.SetTile(5, 5, worldstate.NewTile(worldstate.Ocean, 0.1, 0.1, 0.1))
	Generate(p, chunk)

	if got := chunk.Tile(5, 5); got != (worldstate.NewTile(worldstate.Ocean, 0.1, 0.1, 0.1)) {
		t.Fatalf("Generate on an already-generated chunk re-filled tile (5,5): got %+v", got)
	}
	_ = original
}

func TestGenerateMatchesPipelineSample(t *testing.T) {
	p := New(5150)
	chunk := worldstate.NewChunk(10, 10)
	Generate(p, chunk)

	wx, wy := chunk.WorldX(0), chunk.WorldY(0)
	want := p.At(wx, wy)
	got := chunk.Tile(0, 0)

	if got.Terrain != want.Terrain || got.Height != want.Height || got.Temperature != want.Temperature || got.Moisture != want.Moisture {
		t.Fatalf("chunk tile (0,0) = %+v, want terrain derived from %+v", got, want)
	}
}
