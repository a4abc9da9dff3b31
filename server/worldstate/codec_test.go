package worldstate

import "testing"

func TestEncodeDecodeRoundTrip(t *testing.T) {
	c := NewChunk(7, -9)
	c.Generated = true
	c.Modified = true
	c.SetTile(0, 0, NewTile(Grassland, 0.5, 0.25, 0.75))
	c.SetTile(15, 15, Tile{
		Terrain:       Mountain,
		Height:        0.9,
		Temperature:   0.1,
		Moisture:      0.2,
		OwnerID:       42,
		StructureID:   3,
		ContentAmount: 100,
		Rotation:      2,
	})

	data, err := Encode(c)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if got.CX != c.CX || got.CY != c.CY {
		t.Fatalf("coordinates did not round-trip: got (%d,%d), want (%d,%d)", got.CX, got.CY, c.CX, c.CY)
	}
	if got.Generated != c.Generated || got.Modified != c.Modified {
		t.Fatalf("header flags did not round-trip: got generated=%v modified=%v", got.Generated, got.Modified)
	}
	if !got.Present(0, 0) || got.Tile(0, 0).Terrain != Grassland {
		t.Fatalf("tile (0,0) did not round-trip: %+v", got.Tile(0, 0))
	}
	gotStructured := got.Tile(15, 15)
	want := c.Tile(15, 15)
	if gotStructured.Terrain != want.Terrain || gotStructured.OwnerID != want.OwnerID ||
		gotStructured.StructureID != want.StructureID || gotStructured.ContentAmount != want.ContentAmount ||
		gotStructured.Rotation != want.Rotation {
		t.Fatalf("tile (15,15) did not round-trip: got %+v, want %+v", gotStructured, want)
	}
	if got.Present(1, 1) {
		t.Fatal("an untouched tile must not decode as present")
	}
}

func TestDecodeRejectsTruncatedFrame(t *testing.T) {
	c := NewChunk(0, 0)
	c.SetTile(0, 0, NewTile(Ocean, 0.3, 0.3, 0.3))
	data, err := Encode(c)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	_, err = Decode(data[:len(data)/2])
	if err == nil {
		t.Fatal("expected Decode of a truncated frame to fail")
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode([]byte("not a gzip stream"))
	if err == nil {
		t.Fatal("expected Decode of non-gzip data to fail")
	}
}
