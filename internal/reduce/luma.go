// Package reduce converts a raster to 8-bit luminance and downsamples it to
// the small grids the hash algorithms work on.
//
// All arithmetic is integer:
//   - luma Y = (299·R + 587·G + 114·B + 500) / 1000, alpha ignored
//   - triangle filter weights normalised to 2^20 per output sample
//   - box filter sums in uint64, mean rounded half up
//
// so a given raster reduces to the same bytes on every GOARCH regardless of
// FMA fusion or vectorisation.
package reduce

import (
	"image"
	"image/color"
	"math"
)

// Plane is an 8-bit luminance image with zero origin.
type Plane struct {
	W, H int
	Pix  []uint8 // row-major, len W*H
}

// At returns the sample at (x, y).
func (p *Plane) At(x, y int) uint8 { return p.Pix[y*p.W+x] }

// luma8 is the fixed luminance weighting. Integer only.
func luma8(r, g, b uint32) uint8 {
	return uint8((299*r + 587*g + 114*b + 500) / 1000)
}

// ─── YCbCr → RGB lookup tables ───────────────────────────────
var (
	ycbcrCrR [256]int32 // R = Y + ycbcrCrR[Cr]
	ycbcrCbG [256]int32 // G = Y - ycbcrCbG[Cb] - ycbcrCrG[Cr]
	ycbcrCrG [256]int32
	ycbcrCbB [256]int32 // B = Y + ycbcrCbB[Cb]
)

func init() {
	// Tables are built from constants once; float rounding here is
	// correctly rounded on every platform.
	for i := 0; i < 256; i++ {
		v := float64(i) - 128.0
		ycbcrCrR[i] = int32(math.Round(1.40200 * v))
		ycbcrCbG[i] = int32(math.Round(0.34414 * v))
		ycbcrCrG[i] = int32(math.Round(0.71414 * v))
		ycbcrCbB[i] = int32(math.Round(1.77200 * v))
	}
}

// Luma converts any image to a luminance plane. NRGBA, RGBA, Gray and YCbCr
// are read directly from their Pix slices; other types go through
// color.NRGBAModel.
func Luma(img image.Image) *Plane {
	b := img.Bounds()
	p := &Plane{W: b.Dx(), H: b.Dy()}
	if p.W <= 0 || p.H <= 0 {
		p.W, p.H = 0, 0
		return p
	}
	p.Pix = make([]uint8, p.W*p.H)

	switch src := img.(type) {
	case *image.NRGBA:
		lumaNRGBA(src, b, p)
	case *image.RGBA:
		lumaRGBA(src, b, p)
	case *image.Gray:
		lumaGray(src, b, p)
	case *image.YCbCr:
		lumaYCbCr(src, b, p)
	default:
		lumaGeneric(img, b, p)
	}
	return p
}

// lumaNRGBA: non-premultiplied RGBA (what the decoder produces).
func lumaNRGBA(src *image.NRGBA, b image.Rectangle, p *Plane) {
	for y := 0; y < p.H; y++ {
		off := src.PixOffset(b.Min.X, b.Min.Y+y)
		row := p.Pix[y*p.W : (y+1)*p.W]
		for x := range row {
			row[x] = luma8(uint32(src.Pix[off]), uint32(src.Pix[off+1]), uint32(src.Pix[off+2]))
			off += 4
		}
	}
}

// lumaRGBA: premultiplied RGBA, un-premultiplied so that translucent
// pixels weigh the same as their NRGBA equivalent.
func lumaRGBA(src *image.RGBA, b image.Rectangle, p *Plane) {
	for y := 0; y < p.H; y++ {
		off := src.PixOffset(b.Min.X, b.Min.Y+y)
		row := p.Pix[y*p.W : (y+1)*p.W]
		for x := range row {
			r, g, bl, a := uint32(src.Pix[off]), uint32(src.Pix[off+1]), uint32(src.Pix[off+2]), uint32(src.Pix[off+3])
			switch a {
			case 0xff:
			case 0:
				r, g, bl = 0, 0, 0
			default:
				r = (r*0xff + a/2) / a
				g = (g*0xff + a/2) / a
				bl = (bl*0xff + a/2) / a
			}
			row[x] = luma8(r, g, bl)
			off += 4
		}
	}
}

// lumaGray: already luminance.
func lumaGray(src *image.Gray, b image.Rectangle, p *Plane) {
	for y := 0; y < p.H; y++ {
		off := src.PixOffset(b.Min.X, b.Min.Y+y)
		copy(p.Pix[y*p.W:(y+1)*p.W], src.Pix[off:off+p.W])
	}
}

// lumaYCbCr converts through the LUTs with direct subsample addressing.
func lumaYCbCr(src *image.YCbCr, b image.Rectangle, p *Plane) {
	for y := 0; y < p.H; y++ {
		sy := b.Min.Y + y
		row := p.Pix[y*p.W : (y+1)*p.W]
		for x := range row {
			sx := b.Min.X + x
			yy := int32(src.Y[src.YOffset(sx, sy)])
			ci := src.COffset(sx, sy)
			cb, cr := src.Cb[ci], src.Cr[ci]
			r := clampByte(yy + ycbcrCrR[cr])
			g := clampByte(yy - ycbcrCbG[cb] - ycbcrCrG[cr])
			bl := clampByte(yy + ycbcrCbB[cb])
			row[x] = luma8(uint32(r), uint32(g), uint32(bl))
		}
	}
}

// lumaGeneric: fallback using image.At (interface dispatch per pixel).
func lumaGeneric(img image.Image, b image.Rectangle, p *Plane) {
	for y := 0; y < p.H; y++ {
		row := p.Pix[y*p.W : (y+1)*p.W]
		for x := range row {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			row[x] = luma8(uint32(c.R), uint32(c.G), uint32(c.B))
		}
	}
}

// clampByte clamps an int32 to [0, 255].
func clampByte(v int32) int32 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}
