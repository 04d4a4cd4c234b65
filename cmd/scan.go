package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/pixhash/internal/manifest"
	"github.com/AnyUserName/pixhash/internal/phash"
	"github.com/AnyUserName/pixhash/internal/pipeline"
)

// manifestName is the file scan writes when --out names a directory.
const manifestName = "pixhash.manifest.json"

var (
	scanOut       string
	scanWorkers   int
	scanAlgorithm string
	scanSize      int
	scanPreset    string
)

var scanCmd = &cobra.Command{
	Use:   "scan <input_dir>",
	Short: "Fingerprint every image under a directory",
	Long: `Walks <input_dir>, hashes every file an enabled decoder recognises and
writes a manifest of fingerprints. Files are identified by content, not by
extension; files no decoder claims are listed as skipped, and files that
fail to decode are recorded with their error kind.`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVarP(&scanOut, "out", "o", manifestName, "manifest path, or a directory to write "+manifestName+" into")
	scanCmd.Flags().IntVarP(&scanWorkers, "workers", "w", 0, "parallel workers (0 = config, then NumCPU)")
	scanCmd.Flags().StringVarP(&scanAlgorithm, "algorithm", "a", "", "hash algorithm (default from preset or config)")
	scanCmd.Flags().IntVarP(&scanSize, "hash-size", "s", 0, "hash length in bits (default from preset or config)")
	scanCmd.Flags().StringVarP(&scanPreset, "preset", "p", "", "named algorithm and size from the config file")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	start := time.Now()

	absInput, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("resolve input path: %w", err)
	}
	outPath := scanOut
	if info, err := os.Stat(outPath); err == nil && info.IsDir() {
		outPath = filepath.Join(outPath, manifestName)
	}

	defaults, err := requestDefaults(scanPreset)
	if err != nil {
		return err
	}
	alg, size := defaults.Algorithm, defaults.HashSize
	if scanAlgorithm != "" {
		if alg, err = phash.ParseAlgorithm(scanAlgorithm); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("hash-size") {
		size = scanSize
	}
	workers := scanWorkers
	if workers == 0 {
		workers = cfg.Scan.Workers
	}

	reg, err := newRegistry()
	if err != nil {
		return err
	}

	log.WithField("input", absInput).WithField("output", outPath).Debug("scanning")
	log.Debugf("algorithm: %s, hash size: %d", alg, size)

	p, err := pipeline.New(pipeline.Config{
		InputDir:  absInput,
		Algorithm: alg,
		HashSize:  size,
		Workers:   workers,
		Registry:  reg,
		Log:       log,
	})
	if err != nil {
		return err
	}

	m, err := p.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}

	if err := manifest.WriteJSON(m, outPath); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	printScanReport(cmd, m, outPath, time.Since(start))
	return nil
}

func printScanReport(cmd *cobra.Command, m *manifest.Manifest, path string, elapsed time.Duration) {
	w := cmd.OutOrStdout()
	s := m.Stats

	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Hashed:      %d images (%s)\n", s.TotalEntries, formatBytes(s.TotalInputBytes))
	fmt.Fprintf(w, "  Algorithm:   %s, %d bits\n", m.Algorithm, m.HashSize)
	if s.TotalSkipped > 0 {
		fmt.Fprintf(w, "  Skipped:     %d files (no decoder)\n", s.TotalSkipped)
	}
	if s.TotalFailures > 0 {
		fmt.Fprintf(w, "  Failed:      %d files\n", s.TotalFailures)
		keys := make([]string, 0, len(m.Failures))
		for k := range m.Failures {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(w, "    %-40s %s\n", truncKey(k, 40), m.Failures[k].Kind)
		}
	}
	if s.DuplicateDigests > 0 {
		fmt.Fprintf(w, "  Duplicates:  %d byte-identical files\n", s.DuplicateDigests)
	}
	if m.BuildInfo != nil {
		fmt.Fprintf(w, "  Workers:     %d\n", m.BuildInfo.Workers)
	}
	fmt.Fprintf(w, "  Time:        %s\n", elapsed.Round(time.Millisecond))
	fmt.Fprintf(w, "  Manifest:    %s\n", path)
	fmt.Fprintln(w)
}
