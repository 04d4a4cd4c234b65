package raster

import (
	"bytes"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"
)

// Codec decodes one image encoding identified by its leading magic bytes.
type Codec interface {
	// Format returns the canonical format name (e.g. "png", "jpeg").
	Format() string

	// Match reports whether head starts with this codec's signature.
	Match(head []byte) bool

	// DecodeConfig reads only the header, returning the pixel dimensions.
	DecodeConfig(data []byte) (image.Config, error)

	// Decode decodes the full payload.
	Decode(data []byte) (image.Image, error)
}

// stdCodec adapts a pair of image package functions to Codec.
type stdCodec struct {
	format     string
	signatures [][]byte
	riffType   []byte // non-nil for RIFF containers: bytes 8..12 must match
	decode     func(r *bytes.Reader) (image.Image, error)
	config     func(r *bytes.Reader) (image.Config, error)
}

func (c *stdCodec) Format() string { return c.format }

func (c *stdCodec) Match(head []byte) bool {
	for _, sig := range c.signatures {
		if !bytes.HasPrefix(head, sig) {
			continue
		}
		if c.riffType == nil {
			return true
		}
		return len(head) >= 12 && bytes.Equal(head[8:12], c.riffType)
	}
	return false
}

func (c *stdCodec) DecodeConfig(data []byte) (image.Config, error) {
	return c.config(bytes.NewReader(data))
}

func (c *stdCodec) Decode(data []byte) (image.Image, error) {
	return c.decode(bytes.NewReader(data))
}

// PNGCodec decodes PNG using Go's standard library.
func PNGCodec() Codec {
	return &stdCodec{
		format:     "png",
		signatures: [][]byte{[]byte("\x89PNG\r\n\x1a\n")},
		decode:     func(r *bytes.Reader) (image.Image, error) { return png.Decode(r) },
		config:     func(r *bytes.Reader) (image.Config, error) { return png.DecodeConfig(r) },
	}
}

// JPEGCodec decodes baseline and progressive JPEG using Go's standard library.
func JPEGCodec() Codec {
	return &stdCodec{
		format:     "jpeg",
		signatures: [][]byte{{0xFF, 0xD8, 0xFF}},
		decode:     func(r *bytes.Reader) (image.Image, error) { return jpeg.Decode(r) },
		config:     func(r *bytes.Reader) (image.Config, error) { return jpeg.DecodeConfig(r) },
	}
}

// GIFCodec decodes the first frame of a GIF.
func GIFCodec() Codec {
	return &stdCodec{
		format:     "gif",
		signatures: [][]byte{[]byte("GIF87a"), []byte("GIF89a")},
		decode:     func(r *bytes.Reader) (image.Image, error) { return gif.Decode(r) },
		config:     func(r *bytes.Reader) (image.Config, error) { return gif.DecodeConfig(r) },
	}
}

// WebPCodec decodes lossy and lossless WebP via golang.org/x/image.
func WebPCodec() Codec {
	return &stdCodec{
		format:     "webp",
		signatures: [][]byte{[]byte("RIFF")},
		riffType:   []byte("WEBP"),
		decode:     func(r *bytes.Reader) (image.Image, error) { return webp.Decode(r) },
		config:     func(r *bytes.Reader) (image.Config, error) { return webp.DecodeConfig(r) },
	}
}

// BMPCodec decodes uncompressed BMP via golang.org/x/image.
func BMPCodec() Codec {
	return &stdCodec{
		format:     "bmp",
		signatures: [][]byte{[]byte("BM")},
		decode:     func(r *bytes.Reader) (image.Image, error) { return bmp.Decode(r) },
		config:     func(r *bytes.Reader) (image.Config, error) { return bmp.DecodeConfig(r) },
	}
}

// TIFFCodec decodes little- and big-endian TIFF via golang.org/x/image.
func TIFFCodec() Codec {
	return &stdCodec{
		format:     "tiff",
		signatures: [][]byte{[]byte("II*\x00"), []byte("MM\x00*")},
		decode:     func(r *bytes.Reader) (image.Image, error) { return tiff.Decode(r) },
		config:     func(r *bytes.Reader) (image.Config, error) { return tiff.DecodeConfig(r) },
	}
}
