package phash

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/corona10/goimagehash"
)

// EncodeBase64 encodes packed hash bytes with standard, padded base64.
func EncodeBase64(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

// DecodeBase64 is the exact inverse of EncodeBase64. Input that would not
// re-encode to itself (missing padding, non-zero trailing bits) is rejected.
func DecodeBase64(s string) ([]byte, error) {
	b, err := base64.StdEncoding.Strict().DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode hash: %w", err)
	}
	if len(b) == 0 {
		return nil, errors.New("decode hash: empty")
	}
	return b, nil
}

// FromBase64 rebuilds a Hash from its encoded form. The algorithm is not
// part of the encoding, so the caller supplies it.
func FromBase64(s string, alg Algorithm) (*Hash, error) {
	b, err := DecodeBase64(s)
	if err != nil {
		return nil, err
	}
	return &Hash{Algorithm: alg, Size: len(b) * 8, bytes: b}, nil
}

// ErrLengthMismatch is returned when comparing hashes of different lengths.
var ErrLengthMismatch = errors.New("hashes have different lengths")

// Distance returns the Hamming distance between two encoded hashes.
func Distance(a, b string) (int, error) {
	ab, err := DecodeBase64(a)
	if err != nil {
		return 0, err
	}
	bb, err := DecodeBase64(b)
	if err != nil {
		return 0, err
	}
	return distanceBytes(ab, bb)
}

// Distance returns the Hamming distance to other.
func (h *Hash) Distance(other *Hash) (int, error) {
	return distanceBytes(h.bytes, other.bytes)
}

// Similarity returns 1 - distance/bits for two encoded hashes.
func Similarity(a, b string) (float64, error) {
	d, err := Distance(a, b)
	if err != nil {
		return 0, err
	}
	ab, _ := DecodeBase64(a)
	return 1 - float64(d)/float64(len(ab)*8), nil
}

// distanceBytes counts differing bits through goimagehash so distances agree
// with hashes produced by that library's consumers.
func distanceBytes(a, b []byte) (int, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d bits", ErrLengthMismatch, len(a)*8, len(b)*8)
	}
	bits := len(a) * 8
	ha := goimagehash.NewExtImageHash(toWords(a), goimagehash.Unknown, bits)
	hb := goimagehash.NewExtImageHash(toWords(b), goimagehash.Unknown, bits)
	return ha.Distance(hb)
}

// toWords packs bytes big-endian into uint64 words, zero-padding the last.
func toWords(b []byte) []uint64 {
	words := make([]uint64, (len(b)+7)/8)
	for i, v := range b {
		words[i/8] |= uint64(v) << uint(56-8*(i%8))
	}
	return words
}
