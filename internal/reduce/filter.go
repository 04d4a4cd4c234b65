package reduce

// weightBits is the fixed-point precision of filter weights. Each output
// sample's weights sum to exactly 1<<weightBits.
const weightBits = 20

// Grid is a reduced luminance grid. Samples are 8-bit so comparisons between
// them are exact.
type Grid struct {
	W, H int
	Pix  []uint8 // row-major, len W*H
}

// At returns the sample at (x, y).
func (g *Grid) At(x, y int) uint8 { return g.Pix[y*g.W+x] }

// Filter selects the resampling kernel.
type Filter int

const (
	// Triangle is a linear (tent) kernel whose support scales with the
	// reduction factor.
	Triangle Filter = iota
	// Box averages the exact source span that falls into each cell.
	Box
)

func (f Filter) String() string {
	if f == Box {
		return "box"
	}
	return "triangle"
}

// Resize reduces p to w×h with the given filter. w and h must be positive.
func Resize(p *Plane, w, h int, f Filter) *Grid {
	if f == Box {
		return boxResize(p, w, h)
	}
	return triangleResize(p, w, h)
}

// tap is the contiguous run of source samples contributing to one output
// sample and their fixed-point weights.
type tap struct {
	start   int
	weights []uint32
}

// triangleTaps computes integer tent weights for resampling src samples to
// dst samples.
//
// Positions are measured in units of 1/(2·dst) source pixels: source pixel i
// has its centre at (2i+1)·dst and output sample d at (2d+1)·src. The kernel
// radius is max(src/dst, 1) source pixels, i.e. 2·max(src, dst) units, and a
// source sample at distance D gets raw weight radius-D. Raw weights are then
// scaled to sum to 1<<weightBits; the rounding remainder goes to the
// heaviest tap.
func triangleTaps(src, dst int) []tap {
	taps := make([]tap, dst)
	radius := int64(2 * src)
	if dst > src {
		radius = int64(2 * dst)
	}
	unit := int64(2 * dst)

	for d := 0; d < dst; d++ {
		centre := int64(2*d+1) * int64(src)
		lo := int((centre-radius)/unit) - 1
		hi := int((centre+radius)/unit) + 1
		if lo < 0 {
			lo = 0
		}
		if hi > src-1 {
			hi = src - 1
		}

		raw := make([]int64, 0, hi-lo+1)
		start := -1
		var total int64
		for i := lo; i <= hi; i++ {
			dist := int64(2*i+1)*int64(dst) - centre
			if dist < 0 {
				dist = -dist
			}
			wt := radius - dist
			if wt <= 0 {
				if start >= 0 {
					break
				}
				continue
			}
			if start < 0 {
				start = i
			}
			raw = append(raw, wt)
			total += wt
		}

		ws := make([]uint32, len(raw))
		var sum uint64
		heaviest := 0
		for i, r := range raw {
			ws[i] = uint32(uint64(r) << weightBits / uint64(total))
			sum += uint64(ws[i])
			if r > raw[heaviest] {
				heaviest = i
			}
		}
		ws[heaviest] += uint32(uint64(1)<<weightBits - sum)
		taps[d] = tap{start: start, weights: ws}
	}
	return taps
}

// triangleResize applies triangleTaps separably: rows first into a uint32
// buffer holding weightBits fractional bits, then columns in uint64.
func triangleResize(p *Plane, w, h int) *Grid {
	xt := triangleTaps(p.W, w)
	yt := triangleTaps(p.H, h)

	tmp := make([]uint32, w*p.H)
	for y := 0; y < p.H; y++ {
		row := p.Pix[y*p.W : (y+1)*p.W]
		for dx, t := range xt {
			var acc uint32
			for k, wt := range t.weights {
				acc += wt * uint32(row[t.start+k])
			}
			tmp[y*w+dx] = acc
		}
	}

	g := &Grid{W: w, H: h, Pix: make([]uint8, w*h)}
	const half = uint64(1) << (2*weightBits - 1)
	for dy, t := range yt {
		for dx := 0; dx < w; dx++ {
			var acc uint64
			for k, wt := range t.weights {
				acc += uint64(wt) * uint64(tmp[(t.start+k)*w+dx])
			}
			g.Pix[dy*w+dx] = uint8((acc + half) >> (2 * weightBits))
		}
	}
	return g
}

// boxResize averages each cell's source span. Spans cover at least one
// source sample, so grids larger than the source repeat samples.
func boxResize(p *Plane, w, h int) *Grid {
	g := &Grid{W: w, H: h, Pix: make([]uint8, w*h)}
	for dy := 0; dy < h; dy++ {
		sy0, sy1 := srcSpan(dy, h, p.H)
		for dx := 0; dx < w; dx++ {
			sx0, sx1 := srcSpan(dx, w, p.W)

			var sum uint64
			for sy := sy0; sy < sy1; sy++ {
				for _, v := range p.Pix[sy*p.W+sx0 : sy*p.W+sx1] {
					sum += uint64(v)
				}
			}
			n := uint64((sy1 - sy0) * (sx1 - sx0))
			g.Pix[dy*w+dx] = uint8((2*sum + n) / (2 * n))
		}
	}
	return g
}

// srcSpan returns the half-open source range [s0, s1) covered by output
// cell d.
func srcSpan(d, dstSize, srcSize int) (int, int) {
	s0 := d * srcSize / dstSize
	s1 := (d + 1) * srcSize / dstSize
	if s1 <= s0 {
		s1 = s0 + 1
	}
	if s1 > srcSize {
		s1 = srcSize
	}
	return s0, s1
}
