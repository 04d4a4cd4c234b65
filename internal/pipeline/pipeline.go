// Package pipeline fingerprints every image under a directory with a
// bounded worker pool and collects the results into a manifest.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/AnyUserName/pixhash/internal/apperr"
	"github.com/AnyUserName/pixhash/internal/manifest"
	"github.com/AnyUserName/pixhash/internal/phash"
	"github.com/AnyUserName/pixhash/internal/raster"
	"github.com/AnyUserName/pixhash/internal/service"
	"github.com/AnyUserName/pixhash/internal/store/fsstore"
)

// Config holds all parameters for a scan.
type Config struct {
	InputDir  string
	Algorithm phash.Algorithm
	HashSize  int
	Workers   int
	Registry  *raster.Registry // nil = PNG and JPEG only
	Log       logrus.FieldLogger
}

// Pipeline orchestrates a directory scan.
type Pipeline struct {
	cfg     Config
	fetcher service.Fetcher
}

// New creates a configured pipeline rooted at cfg.InputDir.
func New(cfg Config) (*Pipeline, error) {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.Registry == nil {
		reg, err := raster.NewRegistry(raster.DefaultFormats)
		if err != nil {
			return nil, err
		}
		cfg.Registry = reg
	}
	if cfg.Log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		cfg.Log = l
	}
	if !cfg.Algorithm.Valid() {
		return nil, fmt.Errorf("invalid algorithm %d", int(cfg.Algorithm))
	}
	if !phash.ValidSize(cfg.HashSize) {
		return nil, phash.ErrUnsupportedSize{Size: cfg.HashSize}
	}
	store, err := fsstore.New(cfg.InputDir)
	if err != nil {
		return nil, err
	}
	return &Pipeline{cfg: cfg, fetcher: store}, nil
}

// Run scans the input directory and hashes every file. Per-file failures
// are recorded in the manifest; Run fails only when the scan itself fails,
// nothing was found, every candidate failed, or ctx is cancelled.
func (p *Pipeline) Run(ctx context.Context) (*manifest.Manifest, error) {
	log := p.cfg.Log
	log.WithField("decoders", p.cfg.Registry.String()).Debug("starting scan")

	sources, err := ScanFiles(p.cfg.InputDir)
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("no files found in %s", p.cfg.InputDir)
	}
	log.WithField("files", len(sources)).Debug("found candidate files")

	results := make([]processResult, len(sources))
	var wg sync.WaitGroup
	sem := make(chan struct{}, p.cfg.Workers)

	for i, src := range sources {
		wg.Add(1)
		go func(idx int, s Source) {
			defer wg.Done()
			sem <- struct{}{}        // acquire
			defer func() { <-sem }() // release

			if err := ctx.Err(); err != nil {
				results[idx] = processResult{key: s.RelPath, err: err}
				return
			}
			results[idx] = processFile(ctx, s, p)

			fields := logrus.Fields{"path": s.RelPath}
			switch r := results[idx]; {
			case r.skipped:
				log.WithFields(fields).Debug("skipped: no decoder")
			case r.err != nil:
				log.WithFields(fields).WithError(r.err).Warn("failed to hash file")
			default:
				log.WithFields(fields).WithField("hash", r.entry.Hash).Debug("hashed file")
			}
		}(i, src)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m := manifest.New(p.cfg.InputDir, p.cfg.Algorithm, p.cfg.HashSize)
	for _, r := range results {
		switch {
		case r.skipped:
			m.Skipped = append(m.Skipped, r.key)
		case r.err != nil:
			m.Failures[r.key] = manifest.Failure{
				Kind:    apperr.KindOf(r.err).String(),
				Message: r.err.Error(),
			}
		default:
			m.Entries[r.key] = r.entry
		}
	}

	if len(m.Entries) == 0 && len(m.Failures) > 0 {
		return nil, fmt.Errorf("all %d images failed to hash", len(m.Failures))
	}
	if len(m.Failures) > 0 {
		log.Warnf("%d of %d images had errors", len(m.Failures), len(m.Failures)+len(m.Entries))
	}

	m.BuildInfo = &manifest.BuildInfo{
		Workers: p.cfg.Workers,
		Formats: p.cfg.Registry.Formats(),
	}
	m.ComputeStats()
	return m, nil
}
