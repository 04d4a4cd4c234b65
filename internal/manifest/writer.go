package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/AnyUserName/pixhash/internal/phash"
)

// New creates an empty manifest with defaults.
func New(root string, alg phash.Algorithm, size int) *Manifest {
	return &Manifest{
		Version:     SupportedManifestVersion,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Root:        root,
		Algorithm:   alg,
		HashSize:    size,
		Entries:     make(map[string]Entry),
		Failures:    make(map[string]Failure),
	}
}

// ComputeStats recalculates aggregate statistics from entries.
func (m *Manifest) ComputeStats() {
	var s Stats
	s.TotalEntries = len(m.Entries)
	s.TotalFailures = len(m.Failures)
	s.TotalSkipped = len(m.Skipped)

	seen := map[string]bool{}
	for _, key := range m.Keys() {
		e := m.Entries[key]
		s.TotalInputBytes += e.Size
		if e.Digest == "" {
			continue
		}
		if seen[e.Digest] {
			s.DuplicateDigests++
		}
		seen[e.Digest] = true
	}
	m.Stats = s
}

// Keys returns entry keys in sorted order.
func (m *Manifest) Keys() []string {
	keys := make([]string, 0, len(m.Entries))
	for k := range m.Entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// WriteJSON serializes the manifest to a JSON file. encoding/json sorts map
// keys, so output is stable for identical scans.
func WriteJSON(m *Manifest, path string) error {
	m.ComputeStats()

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}

// ReadJSON loads a manifest file.
func ReadJSON(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if m.Entries == nil {
		m.Entries = make(map[string]Entry)
	}
	return &m, nil
}
