package phash

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodec_RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for _, size := range SupportedSizes {
		for i := 0; i < 20; i++ {
			b := make([]byte, size/8)
			rng.Read(b)
			s := EncodeBase64(b)
			got, err := DecodeBase64(s)
			require.NoError(t, err)
			assert.Equal(t, b, got)
		}
	}
}

func TestCodec_PaddingAlwaysEmitted(t *testing.T) {
	// 8 bytes need one padding character, 2 bytes need two.
	assert.Equal(t, "AAAAAAAAAAA=", EncodeBase64(make([]byte, 8)))
	assert.Equal(t, "//8=", EncodeBase64([]byte{0xFF, 0xFF}))
}

func TestCodec_RejectsNonCanonical(t *testing.T) {
	for _, s := range []string{
		"",
		"AAAAAAAAAAA",  // padding stripped
		"AAAAAAAAAAB=", // non-zero trailing bits
		"AAAA AAAAAA=",
		"not base64!",
	} {
		_, err := DecodeBase64(s)
		assert.Error(t, err, "%q", s)
	}
}

func TestFromBase64(t *testing.T) {
	h, err := FromBase64("gAAAAAAAAAE=", Mean)
	require.NoError(t, err)
	assert.Equal(t, 64, h.Size)
	assert.Equal(t, Mean, h.Algorithm)
	assert.True(t, h.Bit(0))
	assert.False(t, h.Bit(1))
	assert.True(t, h.Bit(63))
	assert.Equal(t, "gAAAAAAAAAE=", h.Base64())
}

func TestDistance(t *testing.T) {
	zero := EncodeBase64(make([]byte, 8))
	ones := EncodeBase64([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF})
	some := EncodeBase64([]byte{0x80, 0, 0, 0x0F, 0, 0, 0, 0x01})

	testCases := map[string]struct {
		a, b string
		want int
	}{
		"identical": {a: some, b: some, want: 0},
		"all":       {a: zero, b: ones, want: 64},
		"some":      {a: zero, b: some, want: 6},
		"symmetric": {a: some, b: zero, want: 6},
		"16 bit":    {a: EncodeBase64([]byte{0x00, 0x01}), b: EncodeBase64([]byte{0x80, 0x00}), want: 2},
		"1024 bit":  {a: EncodeBase64(make([]byte, 128)), b: EncodeBase64(append(make([]byte, 127), 0x07)), want: 3},
	}

	for name, testCase := range testCases {
		testCase := testCase
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			d, err := Distance(testCase.a, testCase.b)
			require.NoError(t, err)
			assert.Equal(t, testCase.want, d)
		})
	}
}

func TestDistance_LengthMismatch(t *testing.T) {
	_, err := Distance(EncodeBase64(make([]byte, 8)), EncodeBase64(make([]byte, 32)))
	assert.ErrorIs(t, err, ErrLengthMismatch)
}

func TestSimilarity(t *testing.T) {
	s, err := Similarity(EncodeBase64([]byte{0x00, 0x00}), EncodeBase64([]byte{0x0F, 0x00}))
	require.NoError(t, err)
	assert.InDelta(t, 0.75, s, 1e-9)
}
