package pipeline

import (
	"context"

	"github.com/AnyUserName/pixhash/internal/apperr"
	"github.com/AnyUserName/pixhash/internal/digest"
	"github.com/AnyUserName/pixhash/internal/manifest"
	"github.com/AnyUserName/pixhash/internal/service"
)

// processResult holds the outcome for a single source file.
type processResult struct {
	key     string
	entry   manifest.Entry
	err     error
	skipped bool // no enabled codec matched the bytes
}

// processFile fetches one source through the store and hashes it.
func processFile(ctx context.Context, src Source, p *Pipeline) processResult {
	result := processResult{key: src.RelPath}

	data, err := p.fetcher.Fetch(ctx, src.RelPath)
	if err != nil {
		result.err = err
		return result
	}

	resp, err := service.HashBytes(p.cfg.Registry, data, p.cfg.Algorithm, p.cfg.HashSize)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindUnsupportedFormat {
			result.skipped = true
		}
		result.err = err
		return result
	}

	format := ""
	if c := p.cfg.Registry.Sniff(data); c != nil {
		format = c.Format()
	}
	result.entry = manifest.Entry{
		Hash:   resp.HashBase64,
		Width:  int(resp.ImageSize[0]),
		Height: int(resp.ImageSize[1]),
		Format: format,
		Size:   int64(len(data)),
		Digest: digest.Sum(data),
	}
	return result
}
