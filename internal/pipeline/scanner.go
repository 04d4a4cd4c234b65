package pipeline

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// Source represents a discovered candidate file.
type Source struct {
	// AbsPath is the path to the file on disk.
	AbsPath string
	// RelPath is the slash-separated path relative to the input directory.
	// It is both the manifest key and the fetch path.
	RelPath string
	// Size is the file size in bytes.
	Size int64
}

// ScanFiles walks inputDir and returns every regular, non-hidden file in
// lexical order. Formats are not judged by extension here; the decoder
// sniffs content, and files no codec claims are reported as skipped.
func ScanFiles(inputDir string) ([]Source, error) {
	var sources []Source

	err := filepath.WalkDir(inputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		hidden := strings.HasPrefix(d.Name(), ".") && path != inputDir
		if d.IsDir() {
			if hidden {
				return filepath.SkipDir
			}
			return nil
		}
		if hidden || !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		relPath, err := filepath.Rel(inputDir, path)
		if err != nil {
			return err
		}

		sources = append(sources, Source{
			AbsPath: path,
			RelPath: filepath.ToSlash(relPath),
			Size:    info.Size(),
		})
		return nil
	})

	return sources, err
}
