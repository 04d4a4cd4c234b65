package cmd

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnyUserName/pixhash/internal/digest"
	"github.com/AnyUserName/pixhash/internal/manifest"
	"github.com/AnyUserName/pixhash/internal/phash"
	"github.com/AnyUserName/pixhash/internal/service"
)

// resetFlags restores every flag to its default so package-level flag
// variables do not leak between runs.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// run executes the CLI with args and stdin, returning stdout.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func rampImage(w, h int, flip bool) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8(x * 255 / (w - 1))
			if flip {
				v = 255 - v
			}
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
	return img
}

// testEnv creates an image root and a config file pointing at it.
func testEnv(t *testing.T) (root, configFile string) {
	t.Helper()
	// The config file names the fs backend, so a deployment bucket is ignored.
	t.Setenv("BUCKET_NAME", "unused-bucket")
	t.Setenv("PIXHASH_LOG_LEVEL", "")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	root = t.TempDir()
	writePNG(t, filepath.Join(root, "black.png"), image.NewGray(image.Rect(0, 0, 8, 8)))
	writePNG(t, filepath.Join(root, "ramp.png"), rampImage(64, 32, false))
	writePNG(t, filepath.Join(root, "ramp-small.png"), rampImage(32, 16, false))
	writePNG(t, filepath.Join(root, "sub", "flip.png"), rampImage(64, 32, true))

	configFile = filepath.Join(t.TempDir(), "config.toml")
	text := "[store]\nbackend = \"fs\"\nroot = " + quote(root) + "\n\n[log]\nlevel = \"error\"\n"
	require.NoError(t, os.WriteFile(configFile, []byte(text), 0o644))
	return root, configFile
}

func quote(s string) string {
	data, _ := json.Marshal(s)
	return string(data)
}

func TestInvoke(t *testing.T) {
	_, conf := testEnv(t)

	t.Run("scenario A", func(t *testing.T) {
		out, err := run(t, `{"path": "black.png", "algorithm": "Gradient", "hash_size": 64}`,
			"--config", conf, "invoke")
		require.NoError(t, err)

		var resp service.Response
		require.NoError(t, json.Unmarshal([]byte(out), &resp))
		assert.Equal(t, "AAAAAAAAAAA=", resp.HashBase64)
		assert.Equal(t, [2]uint32{8, 8}, resp.ImageSize)
		assert.Equal(t, phash.Gradient, resp.Algorithm)
	})

	t.Run("algo alias and defaults", func(t *testing.T) {
		out, err := run(t, `{"path": "ramp.png", "algo": "Mean"}`, "--config", conf, "invoke")
		require.NoError(t, err)

		var resp service.Response
		require.NoError(t, json.Unmarshal([]byte(out), &resp))
		assert.Equal(t, phash.Mean, resp.Algorithm)
		assert.Equal(t, 64, resp.HashSize)
	})

	t.Run("not found", func(t *testing.T) {
		out, err := run(t, `{"path": "missing.png"}`, "--config", conf, "invoke")
		require.ErrorIs(t, err, errReported)

		var body service.ErrorBody
		require.NoError(t, json.Unmarshal([]byte(out), &body))
		assert.Equal(t, "FetchError", body.Error.Kind)
		assert.Equal(t, "NotFound", body.Error.FetchKind)
	})

	t.Run("unknown algorithm", func(t *testing.T) {
		out, err := run(t, `{"path": "black.png", "algorithm": "Nonexistent"}`, "--config", conf, "invoke")
		require.Error(t, err)
		assert.Contains(t, out, `"kind": "InvalidRequest"`)
	})

	t.Run("malformed", func(t *testing.T) {
		out, err := run(t, `{"path":`, "--config", conf, "invoke")
		require.Error(t, err)
		assert.Contains(t, out, `"kind": "InvalidRequest"`)
	})
}

func TestHash(t *testing.T) {
	_, conf := testEnv(t)

	out, err := run(t, "", "--config", conf, "hash", "sub/flip.png", "--algorithm", "gradient", "--hash-size", "16")
	require.NoError(t, err)

	var resp service.Response
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, 16, resp.HashSize)
	assert.Equal(t, [2]uint32{64, 32}, resp.ImageSize)

	// A descending ramp never brightens left to right.
	assert.Equal(t, "AAA=", resp.HashBase64)

	out, err = run(t, "", "--config", conf, "hash", "ramp.png", "--preset", "coarse")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, phash.Mean, resp.Algorithm)
	assert.Equal(t, 16, resp.HashSize)

	_, err = run(t, "", "--config", conf, "hash", "ramp.png", "--preset", "nope")
	assert.ErrorContains(t, err, "unknown preset")
}

func TestScanThenInspect(t *testing.T) {
	root, conf := testEnv(t)
	outDir := t.TempDir()

	_, err := run(t, "", "--config", conf, "scan", root, "--out", outDir, "--workers", "2")
	require.NoError(t, err)

	m, err := manifest.ReadJSON(filepath.Join(outDir, manifestName))
	require.NoError(t, err)
	assert.Len(t, m.Entries, 4)
	assert.Equal(t, phash.Gradient, m.Algorithm)
	assert.Contains(t, m.Entries, "sub/flip.png")
	assert.Empty(t, validateManifest(m, true))

	out, err := run(t, "", "--config", conf, "validate", outDir)
	require.NoError(t, err)
	assert.Contains(t, out, "Manifest is valid")

	out, err = run(t, "", "--config", conf, "stats", outDir)
	require.NoError(t, err)
	assert.Contains(t, out, "Entries:          4")

	out, err = run(t, "", "--config", conf, "dupes", outDir, "--threshold", "0", "--json")
	require.NoError(t, err)
	var pairs []manifest.Pair
	require.NoError(t, json.Unmarshal([]byte(out), &pairs))
	// Ascending ramps hash to all ones; uniform black and the descending
	// ramp both hash to all zeros.
	assert.ElementsMatch(t, []manifest.Pair{
		{A: "black.png", B: "sub/flip.png"},
		{A: "ramp-small.png", B: "ramp.png"},
	}, pairs)
}

func TestCompare(t *testing.T) {
	testEnv(t)

	r, err := compareHashes("gAAAAAAAAAE=", "AAAAAAAAAAA=")
	require.NoError(t, err)
	assert.Equal(t, compareResult{Distance: 2, Bits: 64, Similarity: 62.0 / 64}, r)

	_, err = compareHashes("gAAAAAAAAAE=", "AAA=")
	assert.ErrorIs(t, err, phash.ErrLengthMismatch)

	out, err := run(t, "", "compare", "AAA=", "//8=")
	require.NoError(t, err)
	assert.Equal(t, "distance 16/16, similarity 0.0000\n", out)
}

func TestValidateManifest(t *testing.T) {
	m := manifest.New(".", phash.Gradient, 64)
	m.Entries["a.png"] = manifest.Entry{Hash: "AAA=", Width: 1, Height: 1, Format: "png", Digest: "d", Size: 3}
	m.Entries["b.png"] = manifest.Entry{Hash: "!!", Width: 0, Height: 1, Format: "png"}

	errs := validateManifest(m, false)
	assert.Contains(t, errs, `entry "a.png": hash has 16 bits, want 64`)
	assert.Contains(t, errs, `entry "b.png": invalid dimensions 0x1`)
	assert.Contains(t, errs, `entry "b.png": missing digest`)
	assert.Contains(t, errs, "stats.total_entries mismatch: 0 != 2")
}

func TestValidateManifest_Files(t *testing.T) {
	root := t.TempDir()
	writePNG(t, filepath.Join(root, "a.png"), rampImage(16, 16, false))
	data, err := os.ReadFile(filepath.Join(root, "a.png"))
	require.NoError(t, err)

	m := manifest.New(root, phash.Mean, 16)
	m.Entries["a.png"] = manifest.Entry{Hash: "AAA=", Width: 16, Height: 16, Format: "png",
		Size: int64(len(data)), Digest: digest.Sum(data)}
	m.Entries["gone.png"] = manifest.Entry{Hash: "AAA=", Width: 1, Height: 1, Format: "png", Digest: "d"}
	m.ComputeStats()

	errs := validateManifest(m, true)
	assert.Equal(t, []string{`entry "gone.png": file not found`}, errs)

	require.NoError(t, os.WriteFile(filepath.Join(root, "a.png"), append(data[:len(data)-1], 0), 0o644))
	errs = validateManifest(m, true)
	require.Len(t, errs, 2)
	assert.Contains(t, errs[0], `entry "a.png": content changed`)
}

func TestConfigSample(t *testing.T) {
	testEnv(t)
	out, err := run(t, "", "config", "sample")
	require.NoError(t, err)
	assert.Contains(t, out, "[store]")

	path := filepath.Join(t.TempDir(), "pixhash", "config.toml")
	_, err = run(t, "", "config", "init", path)
	require.NoError(t, err)
	_, err = run(t, "", "config", "init", path)
	assert.ErrorContains(t, err, "already exists")
}
