// Package config loads pixhash configuration from a TOML file.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Store selects where request paths are fetched from.
type Store struct {
	Backend string `toml:"backend"` // "fs" or "s3"
	Root    string `toml:"root"`    // fs backend
	Bucket  string `toml:"bucket"`  // s3 backend
	Region  string `toml:"region"`  // s3 backend, optional
}

// Hash holds defaults for omitted request fields.
type Hash struct {
	Algorithm string `toml:"algorithm"`
	Size      int    `toml:"size"`
}

// Decode controls which image encodings are accepted.
type Decode struct {
	Formats   []string `toml:"formats"`
	MaxPixels int      `toml:"max_pixels"`
}

// Scan configures the batch pipeline.
type Scan struct {
	Workers int `toml:"workers"` // 0 = NumCPU
}

// Log configures logrus.
type Log struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "text" or "json"
}

// Preset is a named algorithm + size pair.
type Preset struct {
	Algorithm string `toml:"algorithm"`
	Size      int    `toml:"size"`
}

// Config is the full configuration.
type Config struct {
	Store   Store             `toml:"store"`
	Hash    Hash              `toml:"hash"`
	Decode  Decode            `toml:"decode"`
	Scan    Scan              `toml:"scan"`
	Log     Log               `toml:"log"`
	Presets map[string]Preset `toml:"presets"`
}

// DefaultConfigPath returns ~/.config/pixhash/config.toml.
func DefaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "pixhash", "config.toml"), nil
}

// Load reads path (or the default path when empty), applies defaults and
// environment overrides, and validates the result. A missing file at the
// default path is not an error; a missing explicit path is.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultConfigPath()
		if err == nil {
			path = p
		}
	}

	cfg := base()
	if path != "" {
		data, err := os.ReadFile(expandHome(path))
		switch {
		case err == nil:
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		case errors.Is(err, fs.ErrNotExist) && !explicit:
		default:
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes TOML text on top of the defaults without environment
// overrides.
func Parse(text string) (*Config, error) {
	cfg := base()
	if err := toml.Unmarshal([]byte(text), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Sample returns the commented sample configuration.
func Sample() string { return sampleConfig }

// applyEnv lets the deployment environment pick the bucket, as the hosted
// function is configured through BUCKET_NAME. A backend set in the file wins.
func (c *Config) applyEnv() {
	if b := strings.TrimSpace(os.Getenv("BUCKET_NAME")); b != "" {
		c.Store.Bucket = b
		if strings.TrimSpace(c.Store.Backend) == "" {
			c.Store.Backend = "s3"
		}
	}
	if r := strings.TrimSpace(os.Getenv("AWS_REGION")); r != "" && c.Store.Region == "" {
		c.Store.Region = r
	}
	if lvl := strings.TrimSpace(os.Getenv("PIXHASH_LOG_LEVEL")); lvl != "" {
		c.Log.Level = lvl
	}
}

func expandHome(p string) string {
	if !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, p[2:])
}
