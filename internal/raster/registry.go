package raster

import (
	"fmt"
	"strings"
)

// DefaultFormats is the closed set of formats enabled when no configuration
// says otherwise. Every other codec must be enabled explicitly.
var DefaultFormats = []string{"png", "jpeg"}

// allCodecs lists every codec the binary knows, in sniffing priority order.
func allCodecs() []Codec {
	return []Codec{
		PNGCodec(),
		JPEGCodec(),
		WebPCodec(),
		GIFCodec(),
		TIFFCodec(),
		BMPCodec(),
	}
}

// KnownFormats returns the names of every codec the binary can be configured
// to accept.
func KnownFormats() []string {
	var out []string
	for _, c := range allCodecs() {
		out = append(out, c.Format())
	}
	return out
}

// NormalizeFormat maps aliases ("jpg", "tif") onto canonical format names.
func NormalizeFormat(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "jpg":
		return "jpeg"
	case "tif":
		return "tiff"
	}
	return name
}

// Registry holds the enabled codecs.
type Registry struct {
	codecs    []Codec
	maxPixels int
}

// Option configures a Registry.
type Option func(*Registry)

// WithMaxPixels rejects images whose header declares more than n pixels.
// n <= 0 disables the limit.
func WithMaxPixels(n int) Option {
	return func(r *Registry) { r.maxPixels = n }
}

// DefaultMaxPixels bounds decode memory to roughly 400 MB of NRGBA.
const DefaultMaxPixels = 100_000_000

// NewRegistry enables the named formats. Unknown names are an error so a
// typo in configuration never silently narrows the accepted set.
func NewRegistry(formats []string, opts ...Option) (*Registry, error) {
	if len(formats) == 0 {
		formats = DefaultFormats
	}
	want := map[string]bool{}
	for _, f := range formats {
		want[NormalizeFormat(f)] = true
	}

	r := &Registry{maxPixels: DefaultMaxPixels}
	for _, c := range allCodecs() {
		if want[c.Format()] {
			r.codecs = append(r.codecs, c)
			delete(want, c.Format())
		}
	}
	if len(want) > 0 {
		var unknown []string
		for f := range want {
			unknown = append(unknown, f)
		}
		return nil, fmt.Errorf("unknown image formats %v (known: %s)",
			unknown, strings.Join(KnownFormats(), ", "))
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Sniff returns the enabled codec whose signature matches data, or nil.
func (r *Registry) Sniff(data []byte) Codec {
	head := data
	if len(head) > 16 {
		head = head[:16]
	}
	for _, c := range r.codecs {
		if c.Match(head) {
			return c
		}
	}
	return nil
}

// Formats returns the enabled format names.
func (r *Registry) Formats() []string {
	var out []string
	for _, c := range r.codecs {
		out = append(out, c.Format())
	}
	return out
}

// String returns a summary of enabled codecs.
func (r *Registry) String() string {
	return fmt.Sprintf("codecs: %s", strings.Join(r.Formats(), ", "))
}
