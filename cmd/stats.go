package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/pixhash/internal/manifest"
)

var statsCmd = &cobra.Command{
	Use:   "stats <manifest_or_dir>",
	Short: "Display statistics for a scan manifest",
	Args:  cobra.ExactArgs(1),
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

// loadManifest reads path, or the default manifest inside it when path is a
// directory.
func loadManifest(path string) (*manifest.Manifest, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		path = filepath.Join(path, manifestName)
	}
	return manifest.ReadJSON(path)
}

func runStats(cmd *cobra.Command, args []string) error {
	m, err := loadManifest(args[0])
	if err != nil {
		return err
	}
	printStats(cmd, m)
	return nil
}

func printStats(cmd *cobra.Command, m *manifest.Manifest) {
	w := cmd.OutOrStdout()

	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Manifest version: %d\n", m.Version)
	fmt.Fprintf(w, "  Generated:        %s\n", m.GeneratedAt)
	fmt.Fprintf(w, "  Root:             %s\n", m.Root)
	fmt.Fprintf(w, "  Algorithm:        %s, %d bits\n", m.Algorithm, m.HashSize)
	if m.BuildInfo != nil {
		fmt.Fprintf(w, "  Workers:          %d\n", m.BuildInfo.Workers)
		fmt.Fprintf(w, "  Decoders:         %v\n", m.BuildInfo.Formats)
	}
	fmt.Fprintln(w)

	s := m.Stats
	fmt.Fprintf(w, "  Entries:          %d\n", s.TotalEntries)
	fmt.Fprintf(w, "  Input size:       %s\n", formatBytes(s.TotalInputBytes))
	fmt.Fprintf(w, "  Failures:         %d\n", s.TotalFailures)
	fmt.Fprintf(w, "  Skipped:          %d\n", s.TotalSkipped)
	fmt.Fprintf(w, "  Identical bytes:  %d\n", s.DuplicateDigests)
	fmt.Fprintln(w)

	// Per-format breakdown.
	formatStats := map[string]struct {
		count int
		bytes int64
	}{}
	for _, e := range m.Entries {
		fs := formatStats[e.Format]
		fs.count++
		fs.bytes += e.Size
		formatStats[e.Format] = fs
	}
	formats := make([]string, 0, len(formatStats))
	for f := range formatStats {
		formats = append(formats, f)
	}
	sort.Strings(formats)
	fmt.Fprintln(w, "  Format breakdown:")
	for _, f := range formats {
		fs := formatStats[f]
		fmt.Fprintf(w, "    %-6s  %4d files  %s\n", f, fs.count, formatBytes(fs.bytes))
	}
	fmt.Fprintln(w)

	// Failure kinds.
	if len(m.Failures) > 0 {
		kinds := map[string]int{}
		for _, f := range m.Failures {
			kinds[f.Kind]++
		}
		names := make([]string, 0, len(kinds))
		for k := range kinds {
			names = append(names, k)
		}
		sort.Strings(names)
		fmt.Fprintln(w, "  Failure kinds:")
		for _, k := range names {
			fmt.Fprintf(w, "    %-18s %4d\n", k, kinds[k])
		}
		fmt.Fprintln(w)
	}
}
