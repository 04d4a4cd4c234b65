package config

import (
	"strings"

	"github.com/AnyUserName/pixhash/internal/raster"
)

func (c *Config) normalize() {
	c.Store.Backend = strings.ToLower(strings.TrimSpace(c.Store.Backend))
	if c.Store.Backend == "" {
		c.Store.Backend = defaultStoreBackend
	}
	if c.Store.Root == "" {
		c.Store.Root = defaultStoreRoot
	}
	c.Store.Root = expandHome(c.Store.Root)

	seen := map[string]bool{}
	var formats []string
	for _, f := range c.Decode.Formats {
		f = raster.NormalizeFormat(f)
		if f != "" && !seen[f] {
			seen[f] = true
			formats = append(formats, f)
		}
	}
	c.Decode.Formats = formats

	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
	if c.Log.Level == "" {
		c.Log.Level = defaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = defaultLogFormat
	}

	for name, p := range builtinPresets {
		if _, ok := c.Presets[name]; !ok {
			if c.Presets == nil {
				c.Presets = map[string]Preset{}
			}
			c.Presets[name] = p
		}
	}
}
