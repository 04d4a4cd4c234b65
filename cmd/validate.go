package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/pixhash/internal/digest"
	"github.com/AnyUserName/pixhash/internal/manifest"
	"github.com/AnyUserName/pixhash/internal/phash"
)

var validateCmd = &cobra.Command{
	Use:   "validate <manifest_path>",
	Short: "Validate a scan manifest",
	Long: `Checks the manifest schema version, that every entry carries a
well-formed hash of the manifest's hash size, sane dimensions and a digest,
and that the stored stats agree with the entries. With --files (the default)
every entry is re-read from the manifest root and its digest compared.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

var validateFiles bool

func init() {
	validateCmd.Flags().BoolVar(&validateFiles, "files", true, "check that source files still exist and are unchanged")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	m, err := loadManifest(args[0])
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	errs := validateManifest(m, validateFiles)
	if len(errs) == 0 {
		fmt.Fprintln(w, "  ✓ Manifest is valid")
		fmt.Fprintf(w, "  ✓ %d entries, %s %d-bit hashes\n", len(m.Entries), m.Algorithm, m.HashSize)
		return nil
	}

	fmt.Fprintf(w, "  ✗ Manifest has %d error(s):\n", len(errs))
	for _, e := range errs {
		fmt.Fprintf(w, "    • %s\n", e)
	}
	return fmt.Errorf("validation failed with %d errors", len(errs))
}

func validateManifest(m *manifest.Manifest, checkFiles bool) []string {
	var errs []string

	if m.Version != manifest.SupportedManifestVersion {
		errs = append(errs, fmt.Sprintf("unsupported manifest version: %d", m.Version))
	}
	if !m.Algorithm.Valid() {
		errs = append(errs, fmt.Sprintf("invalid algorithm: %d", int(m.Algorithm)))
	}
	if !phash.ValidSize(m.HashSize) {
		errs = append(errs, fmt.Sprintf("unsupported hash size: %d", m.HashSize))
	}

	for _, key := range m.Keys() {
		e := m.Entries[key]
		if e.Width <= 0 || e.Height <= 0 {
			errs = append(errs, fmt.Sprintf("entry %q: invalid dimensions %dx%d", key, e.Width, e.Height))
		}
		if e.Format == "" {
			errs = append(errs, fmt.Sprintf("entry %q: empty format", key))
		}
		if e.Digest == "" {
			errs = append(errs, fmt.Sprintf("entry %q: missing digest", key))
		}
		raw, err := phash.DecodeBase64(e.Hash)
		switch {
		case err != nil:
			errs = append(errs, fmt.Sprintf("entry %q: bad hash: %v", key, err))
		case len(raw)*8 != m.HashSize:
			errs = append(errs, fmt.Sprintf("entry %q: hash has %d bits, want %d", key, len(raw)*8, m.HashSize))
		}
		if checkFiles {
			if msg := checkSource(m.Root, key, e); msg != "" {
				errs = append(errs, fmt.Sprintf("entry %q: %s", key, msg))
			}
		}
	}

	var total int64
	for _, e := range m.Entries {
		total += e.Size
	}
	if m.Stats.TotalEntries != len(m.Entries) {
		errs = append(errs, fmt.Sprintf("stats.total_entries mismatch: %d != %d", m.Stats.TotalEntries, len(m.Entries)))
	}
	if m.Stats.TotalInputBytes != total {
		errs = append(errs, fmt.Sprintf("stats.total_input_bytes mismatch: %d != %d", m.Stats.TotalInputBytes, total))
	}
	if m.Stats.TotalFailures != len(m.Failures) {
		errs = append(errs, fmt.Sprintf("stats.total_failures mismatch: %d != %d", m.Stats.TotalFailures, len(m.Failures)))
	}

	return errs
}

// checkSource re-reads the source of e and reports a missing or changed file.
func checkSource(root, key string, e manifest.Entry) string {
	f, err := os.Open(filepath.Join(root, filepath.FromSlash(key)))
	if err != nil {
		return "file not found"
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err.Error()
	}
	if info.Size() != e.Size {
		return fmt.Sprintf("size mismatch: manifest=%d, disk=%d", e.Size, info.Size())
	}
	d, err := digest.SumReader(f)
	if err != nil {
		return err.Error()
	}
	if d != e.Digest {
		return fmt.Sprintf("content changed: digest %s, manifest %s", digest.Short(d, 8), digest.Short(e.Digest, 8))
	}
	return ""
}
