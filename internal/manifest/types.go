package manifest

import "github.com/AnyUserName/pixhash/internal/phash"

// Manifest is the output of a pixhash scan: one fingerprint per image under
// Root, all computed with the same algorithm and size.
type Manifest struct {
	Version     int                `json:"version"`
	GeneratedAt string             `json:"generated_at"`
	Root        string             `json:"root"`
	Algorithm   phash.Algorithm    `json:"algorithm"`
	HashSize    int                `json:"hash_size"`
	BuildInfo   *BuildInfo         `json:"build_info,omitempty"`
	Entries     map[string]Entry   `json:"entries"`
	Failures    map[string]Failure `json:"failures,omitempty"`
	Skipped     []string           `json:"skipped,omitempty"` // no enabled codec matched
	Stats       Stats              `json:"stats"`
}

// BuildInfo captures scan parameters for diagnostics.
type BuildInfo struct {
	Workers int      `json:"workers"`
	Formats []string `json:"formats"` // enabled decoder formats
}

// Entry is the fingerprint of one source image.
type Entry struct {
	Hash   string `json:"hash"`   // base64 perceptual hash
	Width  int    `json:"width"`  // decoded raster width
	Height int    `json:"height"` // decoded raster height
	Format string `json:"format"` // sniffed encoding
	Size   int64  `json:"size"`   // source bytes
	Digest string `json:"digest"` // xxhash64 of the source bytes, hex
}

// Failure records a file that matched a codec but could not be hashed.
type Failure struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Stats aggregates scan metrics.
type Stats struct {
	TotalEntries     int   `json:"total_entries"`
	TotalInputBytes  int64 `json:"total_input_bytes"`
	TotalFailures    int   `json:"total_failures"`
	TotalSkipped     int   `json:"total_skipped"`
	DuplicateDigests int   `json:"duplicate_digests,omitempty"` // entries whose bytes repeat an earlier entry
}

// SupportedManifestVersion is the current schema version.
const SupportedManifestVersion = 1
