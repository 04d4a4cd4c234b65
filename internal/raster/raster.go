// Package raster turns encoded image bytes into an 8-bit RGBA raster.
//
// Format detection is content based: the leading magic bytes select the
// codec, never a file name. Only codecs enabled in the Registry take part.
package raster

import (
	"image"

	"github.com/disintegration/imaging"

	"github.com/AnyUserName/pixhash/internal/apperr"
)

// Image is a decoded raster: row-major, non-premultiplied 8-bit RGBA.
// It must not be mutated after Decode returns it.
type Image struct {
	Pix    *image.NRGBA
	Format string
}

// Width returns the pixel width.
func (im *Image) Width() int { return im.Pix.Rect.Dx() }

// Height returns the pixel height.
func (im *Image) Height() int { return im.Pix.Rect.Dy() }

// Decode sniffs data, decodes it with the matching codec and normalises the
// result to NRGBA. claimed may be empty; when set it must agree with the
// sniffed format.
//
// Errors: apperr.KindUnsupportedFormat when no enabled signature matches (or
// the claim disagrees), apperr.KindDecode when a signature matches but the
// payload is corrupt, truncated, empty or over the pixel limit.
func (r *Registry) Decode(data []byte, claimed string) (*Image, error) {
	codec := r.Sniff(data)
	if codec == nil {
		return nil, apperr.UnsupportedFormat("no enabled codec (%s) matches the %d-byte payload",
			joinFormats(r.Formats()), len(data))
	}
	if claimed != "" && NormalizeFormat(claimed) != codec.Format() {
		return nil, apperr.UnsupportedFormat("claimed format %q but payload is %s",
			claimed, codec.Format())
	}

	cfg, err := codec.DecodeConfig(data)
	if err != nil {
		return nil, apperr.Decode(codec.Format(), err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, apperr.Decode(codec.Format(), errEmptyImage)
	}
	if tooManyPixels(cfg.Width, cfg.Height, r.maxPixels) {
		return nil, apperr.Decode(codec.Format(), errTooLarge{cfg.Width, cfg.Height, r.maxPixels})
	}

	img, err := codec.Decode(data)
	if err != nil {
		return nil, apperr.Decode(codec.Format(), err)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, apperr.Decode(codec.Format(), errEmptyImage)
	}

	return &Image{Pix: toNRGBA(img), Format: codec.Format()}, nil
}

// tooManyPixels reports w*h > max, computed in 64 bits so the product
// cannot wrap on 32-bit platforms. max <= 0 means no limit.
func tooManyPixels(w, h, max int) bool {
	return max > 0 && int64(w)*int64(h) > int64(max)
}

// toNRGBA returns img as a zero-origin NRGBA, copying only when needed.
func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}
	return imaging.Clone(img)
}
