// Package digest identifies source bytes with xxHash64. It is a content
// identity for logs and manifests, unrelated to the perceptual hash.
package digest

import (
	"encoding/binary"
	"encoding/hex"
	"io"

	"github.com/cespare/xxhash/v2"
)

// HexLen is the length of a full digest in hex characters.
const HexLen = 16

// Sum returns the xxHash64 of data as 16 lowercase hex characters.
func Sum(data []byte) string {
	return toHex(xxhash.Sum64(data))
}

// SumReader streams r through xxHash64.
func SumReader(r io.Reader) (string, error) {
	h := xxhash.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return toHex(h.Sum64()), nil
}

// Short truncates a digest for display. n <= 0 or n >= len returns d.
func Short(d string, n int) string {
	if n > 0 && n < len(d) {
		return d[:n]
	}
	return d
}

func toHex(v uint64) string {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return hex.EncodeToString(b[:])
}
