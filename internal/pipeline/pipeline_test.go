package pipeline

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnyUserName/pixhash/internal/digest"
	"github.com/AnyUserName/pixhash/internal/phash"
	"github.com/AnyUserName/pixhash/internal/raster"
	"github.com/AnyUserName/pixhash/internal/service"
)

func ramp(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8(x * 255 / w)
			img.SetNRGBA(x, y, color.NRGBA{R: v, G: v, B: uint8(y), A: 255})
		}
	}
	return img
}

func encode(t *testing.T, fn func(*bytes.Buffer) error) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, fn(&buf))
	return buf.Bytes()
}

func writeFile(t *testing.T, dir, rel string, data []byte) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

// fixtureDir lays out a small tree: two decodable images, one GIF (not
// enabled by default), one corrupt PNG, a text file and a hidden directory.
func fixtureDir(t *testing.T) (string, map[string][]byte) {
	t.Helper()
	dir := t.TempDir()
	img := ramp(64, 48)
	files := map[string][]byte{
		"a.png":          encode(t, func(b *bytes.Buffer) error { return png.Encode(b, img) }),
		"photos/b.jpg":   encode(t, func(b *bytes.Buffer) error { return jpeg.Encode(b, img, &jpeg.Options{Quality: 90}) }),
		"anim.gif":       encode(t, func(b *bytes.Buffer) error { return gif.Encode(b, img, nil) }),
		"broken.png":     append([]byte("\x89PNG\r\n\x1a\n"), "not really a png"...),
		"notes.txt":      []byte("hello"),
		".cache/c.png":   encode(t, func(b *bytes.Buffer) error { return png.Encode(b, img) }),
		"photos/.hidden": []byte("x"),
	}
	for rel, data := range files {
		writeFile(t, dir, rel, data)
	}
	return dir, files
}

func TestScanFiles(t *testing.T) {
	dir, _ := fixtureDir(t)

	sources, err := ScanFiles(dir)
	require.NoError(t, err)

	var rels []string
	for _, s := range sources {
		rels = append(rels, s.RelPath)
	}
	assert.Equal(t, []string{"a.png", "anim.gif", "broken.png", "notes.txt", "photos/b.jpg"}, rels)
	assert.Equal(t, int64(5), sources[3].Size)
}

func TestRun(t *testing.T) {
	dir, files := fixtureDir(t)

	p, err := New(Config{InputDir: dir, Algorithm: phash.Gradient, HashSize: 64, Workers: 2})
	require.NoError(t, err)

	m, err := p.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, m.Entries, 2)
	a := m.Entries["a.png"]
	assert.Equal(t, 64, a.Width)
	assert.Equal(t, 48, a.Height)
	assert.Equal(t, "png", a.Format)
	assert.Equal(t, int64(len(files["a.png"])), a.Size)
	assert.Equal(t, digest.Sum(files["a.png"]), a.Digest)
	assert.Equal(t, "jpeg", m.Entries["photos/b.jpg"].Format)

	// Entries match the request path exactly.
	reg, err := raster.NewRegistry(raster.DefaultFormats)
	require.NoError(t, err)
	want, err := service.HashBytes(reg, files["a.png"], phash.Gradient, 64)
	require.NoError(t, err)
	assert.Equal(t, want.HashBase64, a.Hash)

	assert.ElementsMatch(t, []string{"anim.gif", "notes.txt"}, m.Skipped)
	require.Contains(t, m.Failures, "broken.png")
	assert.Equal(t, "DecodeError", m.Failures["broken.png"].Kind)

	assert.Equal(t, 2, m.Stats.TotalEntries)
	assert.Equal(t, 1, m.Stats.TotalFailures)
	assert.Equal(t, 2, m.Stats.TotalSkipped)
	require.NotNil(t, m.BuildInfo)
	assert.Equal(t, []string{"png", "jpeg"}, m.BuildInfo.Formats)
}

func TestRun_OptInFormat(t *testing.T) {
	dir, _ := fixtureDir(t)
	reg, err := raster.NewRegistry([]string{"png", "jpeg", "gif"})
	require.NoError(t, err)

	p, err := New(Config{InputDir: dir, Algorithm: phash.Mean, HashSize: 16, Registry: reg})
	require.NoError(t, err)
	m, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Contains(t, m.Entries, "anim.gif")
	assert.Equal(t, []string{"notes.txt"}, m.Skipped)
}

func TestRun_DeterministicAcrossWorkerCounts(t *testing.T) {
	dir, _ := fixtureDir(t)

	run := func(workers int) map[string]string {
		p, err := New(Config{InputDir: dir, Algorithm: phash.DoubleGradient, HashSize: 256, Workers: workers})
		require.NoError(t, err)
		m, err := p.Run(context.Background())
		require.NoError(t, err)
		out := map[string]string{}
		for k, e := range m.Entries {
			out[k] = e.Hash
		}
		return out
	}
	assert.Equal(t, run(1), run(8))
}

func TestRun_Errors(t *testing.T) {
	t.Run("empty dir", func(t *testing.T) {
		p, err := New(Config{InputDir: t.TempDir(), Algorithm: phash.Gradient, HashSize: 64})
		require.NoError(t, err)
		_, err = p.Run(context.Background())
		assert.ErrorContains(t, err, "no files found")
	})

	t.Run("all failed", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "x.png", []byte("\x89PNG\r\n\x1a\ngarbage"))
		p, err := New(Config{InputDir: dir, Algorithm: phash.Gradient, HashSize: 64})
		require.NoError(t, err)
		_, err = p.Run(context.Background())
		assert.ErrorContains(t, err, "all 1 images failed")
	})

	t.Run("cancelled", func(t *testing.T) {
		dir, _ := fixtureDir(t)
		p, err := New(Config{InputDir: dir, Algorithm: phash.Gradient, HashSize: 64})
		require.NoError(t, err)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err = p.Run(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("bad config", func(t *testing.T) {
		_, err := New(Config{InputDir: t.TempDir(), Algorithm: phash.Gradient, HashSize: 100})
		assert.Error(t, err)
		_, err = New(Config{InputDir: filepath.Join(t.TempDir(), "nope"), Algorithm: phash.Gradient, HashSize: 64})
		assert.Error(t, err)
	})
}
