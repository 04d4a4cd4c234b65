package apperr

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf_Wrapped(t *testing.T) {
	err := fmt.Errorf("handle: %w", Fetch(FetchNotFound, "a/b.png", os.ErrNotExist))

	assert.Equal(t, KindFetch, KindOf(err))
	assert.Equal(t, FetchNotFound, FetchKindOf(err))
	assert.True(t, errors.Is(err, ErrFetch))
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrAccessDenied))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestKindOf_Plain(t *testing.T) {
	assert.Equal(t, KindUnknown, KindOf(errors.New("boom")))
	assert.Equal(t, FetchNone, FetchKindOf(nil))
}

func TestError_Message(t *testing.T) {
	testCases := map[string]struct {
		err      *Error
		expected string
	}{
		"invalid request": {
			err:      InvalidRequest("unknown algorithm %q", "Nonexistent"),
			expected: `InvalidRequest: unknown algorithm "Nonexistent"`,
		},
		"fetch with cause": {
			err:      Fetch(FetchAccessDenied, "x.png", errors.New("denied")),
			expected: "FetchError(AccessDenied): x.png: denied",
		},
		"decode": {
			err:      Decode("png", errors.New("unexpected EOF")),
			expected: "DecodeError: png: unexpected EOF",
		},
		"bare": {
			err:      &Error{Kind: KindUnsupportedFormat},
			expected: "UnsupportedFormat",
		},
	}

	for name, testCase := range testCases {
		testCase := testCase
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, testCase.expected, testCase.err.Error())
		})
	}
}

func TestKindsAreDistinct(t *testing.T) {
	errs := []error{ErrInvalidRequest, ErrFetch, ErrUnsupportedFormat, ErrDecode}
	for i, a := range errs {
		for j, b := range errs {
			if i == j {
				continue
			}
			if errors.Is(a, b) {
				t.Errorf("%v should not match %v", a, b)
			}
		}
	}
}
