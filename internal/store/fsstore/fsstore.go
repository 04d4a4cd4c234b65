// Package fsstore serves objects from a local directory tree.
package fsstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/AnyUserName/pixhash/internal/apperr"
)

// Store reads objects relative to Root. Paths use forward slashes and may
// not escape Root.
type Store struct {
	Root string
}

// New returns a Store rooted at dir.
func New(dir string) (*Store, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve store root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("store root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("store root %s is not a directory", abs)
	}
	return &Store{Root: abs}, nil
}

// Fetch reads the object at path.
func (s *Store) Fetch(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperr.Fetch(apperr.FetchNetwork, path, err)
	}

	rel := filepath.FromSlash(strings.TrimPrefix(path, "/"))
	if !filepath.IsLocal(rel) {
		return nil, apperr.Fetch(apperr.FetchAccessDenied, path, errors.New("path escapes store root"))
	}
	full := filepath.Join(s.Root, rel)

	// The read runs aside so a cancelled ctx returns promptly even when the
	// open or read blocks (network mounts, FIFOs).
	ch := make(chan readResult, 1)
	go func() {
		data, err := os.ReadFile(full)
		ch <- readResult{data, err}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			return nil, apperr.Fetch(classify(full, r.err), path, r.err)
		}
		return r.data, nil
	case <-ctx.Done():
		return nil, apperr.Fetch(apperr.FetchNetwork, path, ctx.Err())
	}
}

type readResult struct {
	data []byte
	err  error
}

func classify(full string, err error) apperr.FetchKind {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return apperr.FetchNotFound
	case errors.Is(err, fs.ErrPermission):
		return apperr.FetchAccessDenied
	}
	if info, statErr := os.Stat(full); statErr == nil && info.IsDir() {
		return apperr.FetchNotFound
	}
	return apperr.FetchNetwork
}
