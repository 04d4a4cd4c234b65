package config

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/AnyUserName/pixhash/internal/phash"
	"github.com/AnyUserName/pixhash/internal/raster"
	"github.com/AnyUserName/pixhash/internal/service"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateStore(); err != nil {
		return err
	}
	if _, err := c.HashDefaults(); err != nil {
		return err
	}
	if _, err := raster.NewRegistry(c.Decode.Formats); err != nil {
		return fmt.Errorf("decode.formats: %w", err)
	}
	if c.Decode.MaxPixels < 0 {
		return fmt.Errorf("decode.max_pixels must be >= 0, got %d", c.Decode.MaxPixels)
	}
	if c.Scan.Workers < 0 {
		return fmt.Errorf("scan.workers must be >= 0, got %d", c.Scan.Workers)
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return c.validatePresets()
}

func (c *Config) validateStore() error {
	switch c.Store.Backend {
	case "fs":
		if c.Store.Root == "" {
			return fmt.Errorf("store.root is required for the fs backend")
		}
	case "s3":
		if c.Store.Bucket == "" {
			return fmt.Errorf("store.bucket is required for the s3 backend (or set BUCKET_NAME)")
		}
	default:
		return fmt.Errorf("store.backend must be fs or s3, got %q", c.Store.Backend)
	}
	return nil
}

func (c *Config) validatePresets() error {
	names := make([]string, 0, len(c.Presets))
	for name := range c.Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, err := resolve(c.Presets[name].Algorithm, c.Presets[name].Size); err != nil {
			return fmt.Errorf("presets.%s: %w", name, err)
		}
	}
	return nil
}

// HashDefaults converts [hash] into request defaults.
func (c *Config) HashDefaults() (service.Defaults, error) {
	d, err := resolve(c.Hash.Algorithm, c.Hash.Size)
	if err != nil {
		return d, fmt.Errorf("hash: %w", err)
	}
	return d, nil
}

// Preset resolves a named preset.
func (c *Config) Preset(name string) (service.Defaults, error) {
	p, ok := c.Presets[name]
	if !ok {
		return service.Defaults{}, fmt.Errorf("unknown preset %q", name)
	}
	return resolve(p.Algorithm, p.Size)
}

func resolve(algorithm string, size int) (service.Defaults, error) {
	alg, err := phash.ParseAlgorithm(algorithm)
	if err != nil {
		return service.Defaults{}, err
	}
	if !phash.ValidSize(size) {
		return service.Defaults{}, phash.ErrUnsupportedSize{Size: size}
	}
	return service.Defaults{Algorithm: alg, HashSize: size}, nil
}
