package config

import (
	"github.com/AnyUserName/pixhash/internal/phash"
	"github.com/AnyUserName/pixhash/internal/raster"
)

const (
	defaultStoreBackend = "fs"
	defaultStoreRoot    = "."
	defaultLogLevel     = "info"
	defaultLogFormat    = "text"
)

// builtinPresets are always available; file presets with the same name
// replace them.
var builtinPresets = map[string]Preset{
	"default": {Algorithm: "Gradient", Size: 64},
	"fine":    {Algorithm: "DoubleGradient", Size: 256},
	"coarse":  {Algorithm: "Mean", Size: 16},
	"block":   {Algorithm: "Blockhash", Size: 64},
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := base()
	cfg.normalize()
	return cfg
}

// base is the pre-fill for decoding a file. Store.Backend stays empty so an
// explicit backend can be told apart from the default when the environment
// is applied.
func base() *Config {
	presets := make(map[string]Preset, len(builtinPresets))
	for k, v := range builtinPresets {
		presets[k] = v
	}
	return &Config{
		Store: Store{Root: defaultStoreRoot},
		Hash:  Hash{Algorithm: phash.DefaultAlgorithm.String(), Size: phash.DefaultSize},
		Decode: Decode{
			Formats:   append([]string(nil), raster.DefaultFormats...),
			MaxPixels: raster.DefaultMaxPixels,
		},
		Log:     Log{Level: defaultLogLevel, Format: defaultLogFormat},
		Presets: presets,
	}
}
