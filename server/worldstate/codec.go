package worldstate

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/klauspost/compress/gzip"
)

// ErrCorruptFrame is returned by Decode when the frame is truncated or
// otherwise structurally invalid. The chunk service treats it the same as
// a missing chunk: the read falls through to regeneration.
var ErrCorruptFrame = errors.New("worldstate: corrupt chunk frame")

// Encode produces the gzipped, framed byte representation of c: the single
// source of truth for both the on-disk and on-wire chunk bytes.
func Encode(c *Chunk) ([]byte, error) {
	var raw bytes.Buffer
	raw.Grow(4 + 4 + 2 + Size*Size*24)

	var hdr [10]byte
	binary.BigEndian.PutUint32(hdr[0:4], uint32(c.CX))
	binary.BigEndian.PutUint32(hdr[4:8], uint32(c.CY))
	hdr[8] = boolByte(c.Generated)
	hdr[9] = boolByte(c.Modified)
	raw.Write(hdr[:])

	var cell [1 + 1 + 4 + 4 + 4 + 8 + 4 + 4 + 1]byte
	for lx := 0; lx < Size; lx++ {
		for ly := 0; ly < Size; ly++ {
			if !c.present[lx][ly] {
				raw.WriteByte(0)
				continue
			}
			t := c.tiles[lx][ly]
			cell[0] = 1
			cell[1] = byte(t.Terrain)
			binary.BigEndian.PutUint32(cell[2:6], math.Float32bits(float32(t.Height)))
			binary.BigEndian.PutUint32(cell[6:10], math.Float32bits(float32(t.Temperature)))
			binary.BigEndian.PutUint32(cell[10:14], math.Float32bits(float32(t.Moisture)))
			binary.BigEndian.PutUint64(cell[14:22], uint64(t.OwnerID))
			binary.BigEndian.PutUint32(cell[22:26], uint32(t.StructureID))
			binary.BigEndian.PutUint32(cell[26:30], uint32(t.ContentAmount))
			cell[30] = byte(t.Rotation)
			raw.Write(cell[:])
		}
	}

	var out bytes.Buffer
	gw := gzip.NewWriter(&out)
	if _, err := gw.Write(raw.Bytes()); err != nil {
		return nil, fmt.Errorf("worldstate: compress chunk frame: %w", err)
	}
	if err := gw.Close(); err != nil {
		return nil, fmt.Errorf("worldstate: compress chunk frame: %w", err)
	}
	return out.Bytes(), nil
}

// Decode parses the gzipped frame produced by Encode. An unknown terrain
// ordinal decodes to the ocean sentinel rather than failing the whole
// chunk; only a truncated or structurally broken frame returns
// ErrCorruptFrame.
func Decode(data []byte) (*Chunk, error) {
	gr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptFrame, err)
	}
	defer gr.Close()

	var hdr [10]byte
	if _, err := io.ReadFull(gr, hdr[:]); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptFrame, err)
	}
	c := NewChunk(int32(binary.BigEndian.Uint32(hdr[0:4])), int32(binary.BigEndian.Uint32(hdr[4:8])))
	c.Generated = hdr[8] != 0
	c.Modified = hdr[9] != 0

	var cell [1 + 1 + 4 + 4 + 4 + 8 + 4 + 4 + 1]byte
	for lx := 0; lx < Size; lx++ {
		for ly := 0; ly < Size; ly++ {
			var present [1]byte
			if _, err := io.ReadFull(gr, present[:]); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrCorruptFrame, err)
			}
			if present[0] == 0 {
				continue
			}
			if _, err := io.ReadFull(gr, cell[1:]); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrCorruptFrame, err)
			}
			terrain := TerrainType(cell[1])
			if !terrain.Valid() {
				terrain = Ocean
			}
			t := Tile{
				Terrain:       terrain,
				Height:        float64(math.Float32frombits(binary.BigEndian.Uint32(cell[2:6]))),
				Temperature:   float64(math.Float32frombits(binary.BigEndian.Uint32(cell[6:10]))),
				Moisture:      float64(math.Float32frombits(binary.BigEndian.Uint32(cell[10:14]))),
				OwnerID:       int64(binary.BigEndian.Uint64(cell[14:22])),
				StructureID:   int32(binary.BigEndian.Uint32(cell[22:26])),
				ContentAmount: int32(binary.BigEndian.Uint32(cell[26:30])),
				Rotation:      int8(cell[30]),
			}
			c.SetTile(lx, ly, t)
		}
	}
	return c, nil
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
