package phash

import "fmt"

// DefaultSize is the hash length in bits when a request omits it.
const DefaultSize = 64

// SupportedSizes lists the accepted hash lengths. Each is s² for an even
// side s, so every algorithm's grid tiles it exactly.
var SupportedSizes = []int{16, 64, 256, 1024}

// side returns s for size = s², or 0 when size is unsupported.
func side(size int) int {
	for _, n := range SupportedSizes {
		if n == size {
			s := 1
			for s*s < size {
				s++
			}
			return s
		}
	}
	return 0
}

// ValidSize reports whether size is a supported hash length.
func ValidSize(size int) bool { return side(size) > 0 }

// ErrUnsupportedSize is returned for hash lengths outside SupportedSizes.
type ErrUnsupportedSize struct{ Size int }

func (e ErrUnsupportedSize) Error() string {
	return fmt.Sprintf("unsupported hash size %d (want one of %v)", e.Size, SupportedSizes)
}

// layout describes the grids an algorithm reduces to for one hash size.
// DoubleGradient uses two grids; every other algorithm uses one.
type layout struct {
	grids []gridSpec
}

type gridSpec struct {
	w, h int
	box  bool // box filter instead of triangle
}

// layoutFor fixes grid shapes from algorithm and size alone, before any
// pixel is read.
func layoutFor(a Algorithm, size int) (layout, error) {
	s := side(size)
	if s == 0 {
		return layout{}, ErrUnsupportedSize{size}
	}
	switch a {
	case Mean:
		return layout{grids: []gridSpec{{w: s, h: s}}}, nil
	case Gradient:
		return layout{grids: []gridSpec{{w: s + 1, h: s}}}, nil
	case VertGradient:
		return layout{grids: []gridSpec{{w: s, h: s + 1}}}, nil
	case DoubleGradient:
		return layout{grids: []gridSpec{{w: s + 1, h: s / 2}, {w: s / 2, h: s + 1}}}, nil
	case Blockhash:
		return layout{grids: []gridSpec{{w: s, h: s, box: true}}}, nil
	}
	return layout{}, fmt.Errorf("invalid algorithm %d", int(a))
}
