package digest

import (
	"bytes"
	"testing"
)

func TestSum_KnownValue(t *testing.T) {
	// xxHash64 of the empty input with seed 0.
	if got := Sum(nil); got != "ef46db3751d8e999" {
		t.Errorf("Sum(nil) = %s", got)
	}
}

func TestSum_MatchesReader(t *testing.T) {
	data := bytes.Repeat([]byte("pixhash"), 1000)
	want := Sum(data)
	got, err := SumReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("SumReader: %v", err)
	}
	if got != want {
		t.Errorf("reader %s != bytes %s", got, want)
	}
	if len(got) != HexLen {
		t.Errorf("len %d", len(got))
	}
}

func TestShort(t *testing.T) {
	if got := Short("0123456789abcdef", 8); got != "01234567" {
		t.Errorf("got %q", got)
	}
	if got := Short("abc", 0); got != "abc" {
		t.Errorf("got %q", got)
	}
	if got := Short("abc", 10); got != "abc" {
		t.Errorf("got %q", got)
	}
}
