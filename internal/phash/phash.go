// Package phash computes perceptual hashes: fixed-length bit vectors that
// stay close in Hamming distance for visually similar images.
//
// Tie rules:
//   - Gradient / VertGradient / DoubleGradient: bit = 1 iff a < b; equal
//     neighbours give 0, so uniform regions hash to runs of zeros.
//   - Mean: bit = 1 iff sample ≥ mean; a sample equal to the mean gives 1.
//   - Blockhash: bit = 1 iff block > median; equal to the median gives 0.
//
// Bits are emitted row-major and packed most-significant-bit first.
package phash

import (
	"errors"
	"image"
	"sort"

	"github.com/AnyUserName/pixhash/internal/reduce"
)

// Hash is a perceptual hash of Size bits.
type Hash struct {
	Algorithm Algorithm
	Size      int
	bytes     []byte // packed MSB-first, len Size/8
}

// Bytes returns a copy of the packed bits.
func (h *Hash) Bytes() []byte {
	out := make([]byte, len(h.bytes))
	copy(out, h.bytes)
	return out
}

// Bit reports bit i (0 = first emitted).
func (h *Hash) Bit(i int) bool {
	return h.bytes[i/8]&(0x80>>uint(i%8)) != 0
}

// Bits expands the hash into one bool per bit.
func (h *Hash) Bits() []bool {
	out := make([]bool, h.Size)
	for i := range out {
		out[i] = h.Bit(i)
	}
	return out
}

// Base64 encodes the hash with EncodeBase64.
func (h *Hash) Base64() string { return EncodeBase64(h.bytes) }

var errEmptyImage = errors.New("phash: image has no pixels")

// Compute hashes img. The hash length is validated before any pixel is
// read and is always exactly size bits.
func Compute(img image.Image, alg Algorithm, size int) (*Hash, error) {
	if _, err := layoutFor(alg, size); err != nil {
		return nil, err
	}
	return ComputePlane(reduce.Luma(img), alg, size)
}

// ComputePlane hashes an already grayscaled plane.
func ComputePlane(p *reduce.Plane, alg Algorithm, size int) (*Hash, error) {
	lay, err := layoutFor(alg, size)
	if err != nil {
		return nil, err
	}
	if p.W == 0 || p.H == 0 {
		return nil, errEmptyImage
	}
	return computePlane(p, alg, size, lay), nil
}

func computePlane(p *reduce.Plane, alg Algorithm, size int, lay layout) *Hash {
	grids := make([]*reduce.Grid, len(lay.grids))
	for i, spec := range lay.grids {
		f := reduce.Triangle
		if spec.box {
			f = reduce.Box
		}
		grids[i] = reduce.Resize(p, spec.w, spec.h, f)
	}

	bw := newBitWriter(size)
	switch alg {
	case Mean:
		meanBits(grids[0], bw)
	case Gradient:
		rowGradientBits(grids[0], bw)
	case VertGradient:
		colGradientBits(grids[0], bw)
	case DoubleGradient:
		rowGradientBits(grids[0], bw)
		colGradientBits(grids[1], bw)
	case Blockhash:
		medianBits(grids[0], bw)
	}
	return &Hash{Algorithm: alg, Size: size, bytes: bw.finish()}
}

// rowGradientBits emits g[y][x] < g[y][x+1] for a (w+1)×h grid.
func rowGradientBits(g *reduce.Grid, bw *bitWriter) {
	for y := 0; y < g.H; y++ {
		for x := 0; x+1 < g.W; x++ {
			bw.put(g.At(x, y) < g.At(x+1, y))
		}
	}
}

// colGradientBits emits g[y][x] < g[y+1][x] for a w×(h+1) grid.
func colGradientBits(g *reduce.Grid, bw *bitWriter) {
	for y := 0; y+1 < g.H; y++ {
		for x := 0; x < g.W; x++ {
			bw.put(g.At(x, y) < g.At(x, y+1))
		}
	}
}

// meanBits emits sample ≥ mean, compared as sample·n ≥ Σ to stay exact.
func meanBits(g *reduce.Grid, bw *bitWriter) {
	var sum uint64
	for _, v := range g.Pix {
		sum += uint64(v)
	}
	n := uint64(len(g.Pix))
	for _, v := range g.Pix {
		bw.put(uint64(v)*n >= sum)
	}
}

// medianBits emits block > median. Twice the median is kept as an integer
// (sum of the two middle values for even counts) so the comparison is exact.
func medianBits(g *reduce.Grid, bw *bitWriter) {
	sorted := make([]int, len(g.Pix))
	for i, v := range g.Pix {
		sorted[i] = int(v)
	}
	sort.Ints(sorted)
	n := len(sorted)
	median2 := 2 * sorted[n/2]
	if n%2 == 0 {
		median2 = sorted[n/2-1] + sorted[n/2]
	}
	for _, v := range g.Pix {
		bw.put(2*int(v) > median2)
	}
}

// bitWriter packs bits MSB-first.
type bitWriter struct {
	buf []byte
	n   int
}

func newBitWriter(size int) *bitWriter {
	return &bitWriter{buf: make([]byte, (size+7)/8)}
}

func (w *bitWriter) put(bit bool) {
	if bit {
		w.buf[w.n/8] |= 0x80 >> uint(w.n%8)
	}
	w.n++
}

func (w *bitWriter) finish() []byte {
	if w.n != len(w.buf)*8 {
		panic("phash: bit count does not match hash size")
	}
	return w.buf
}
