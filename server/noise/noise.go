// Package noise provides the deterministic gradient-noise primitive the
// terrain pipeline is built on. Every field is a pure function of a 64-bit
// seed and a pair of world coordinates: the same seed always produces the
// same permutation table and therefore the same noise values, bit for bit.
package noise

import (
	"encoding/binary"
	"math"
	"math/rand"

	"github.com/cespare/xxhash/v2"
	"github.com/go-gl/mathgl/mgl64"
)

// gradients are the 8 unit vectors a lattice corner's hash may resolve to.
var gradients = [8]mgl64.Vec2{
	{1, 0}, {-1, 0}, {0, 1}, {0, -1},
	{0.7071067811865476, 0.7071067811865476},
	{-0.7071067811865476, 0.7071067811865476},
	{0.7071067811865476, -0.7071067811865476},
	{-0.7071067811865476, -0.7071067811865476},
}

// Field is a gradient-noise field seeded by a 64-bit integer. A Field is
// immutable after New and safe for concurrent use by many callers.
type Field struct {
	seed int64
	perm [512]uint8
}

// New builds a Field whose 256-entry permutation is produced by a
// Fisher-Yates shuffle driven by a PRNG seeded with seed, then duplicated to
// 512 entries so lattice lookups never need to wrap.
func New(seed int64) *Field {
	f := &Field{seed: seed}
	r := rand.New(rand.NewSource(seed))
	var base [256]uint8
	for i := range base {
		base[i] = uint8(i)
	}
	for i := 255; i > 0; i-- {
		j := r.Intn(i + 1)
		base[i], base[j] = base[j], base[i]
	}
	for i := range f.perm {
		f.perm[i] = base[i&255]
	}
	return f
}

// Seed returns the seed the Field was constructed with.
func (f *Field) Seed() int64 { return f.seed }

// fade is the 6t^5-15t^4+10t^3 smoothstep curve used to blend corner
// contributions without discontinuities in the first derivative.
func fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func lerp(t, a, b float64) float64 { return a + t*(b-a) }

// gradient resolves the lattice corner (xi,yi) to one of the 8 unit
// gradients. The permutation supplies the low-entropy half of the hash, an
// xxhash digest over the raw corner coordinates supplies the rest, so that
// nearby corners with colliding permutation values still diverge.
func (f *Field) gradient(xi, yi int32) mgl64.Vec2 {
	a := f.perm[uint8(xi)]
	b := f.perm[(uint32(a)+uint32(uint8(yi)))&511]

	var buf [8]byte
	binary.LittleEndian.PutUint32(buf[0:4], uint32(xi))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(yi))
	h := xxhash.Sum64(buf[:]) ^ uint64(b)
	return gradients[h&7]
}

// Noise evaluates the field at (x,y), returning a value in [-1,1].
// Deterministic as a function of (seed, x, y).
func (f *Field) Noise(x, y float64) float64 {
	x0 := math.Floor(x)
	y0 := math.Floor(y)
	xi := int32(x0)
	yi := int32(y0)
	xf := x - x0
	yf := y - y0

	g00 := f.gradient(xi, yi)
	g10 := f.gradient(xi+1, yi)
	g01 := f.gradient(xi, yi+1)
	g11 := f.gradient(xi+1, yi+1)

	d00 := g00.Dot(mgl64.Vec2{xf, yf})
	d10 := g10.Dot(mgl64.Vec2{xf - 1, yf})
	d01 := g01.Dot(mgl64.Vec2{xf, yf - 1})
	d11 := g11.Dot(mgl64.Vec2{xf - 1, yf - 1})

	u := fade(xf)
	v := fade(yf)

	top := lerp(u, d00, d10)
	bottom := lerp(u, d01, d11)
	// The raw dot-product sum is bounded by sqrt(2)/2 per axis; scale back
	// into [-1,1] so callers can treat Noise as normalized.
	return lerp(v, top, bottom) * 1.4142135623730951
}

// Octave sums octaves frequencies of Noise starting at scale, doubling
// frequency and multiplying amplitude by persistence at each step, then
// normalizes by the total amplitude and remaps the [-1,1] result to [0,1].
func (f *Field) Octave(x, y float64, octaves int, persistence, scale float64) float64 {
	var total, amplitude, maxAmplitude, frequency float64 = 0, 1, 0, scale
	for i := 0; i < octaves; i++ {
		total += f.Noise(x*frequency, y*frequency) * amplitude
		maxAmplitude += amplitude
		amplitude *= persistence
		frequency *= 2
	}
	if maxAmplitude == 0 {
		return 0.5
	}
	return (total/maxAmplitude + 1) / 2
}
