package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/pixhash/internal/digest"
)

var (
	dupesThreshold int
	dupesJSON      bool
)

var dupesCmd = &cobra.Command{
	Use:   "dupes <manifest_or_dir>",
	Short: "List near-duplicate image pairs from a scan manifest",
	Long: `Compares every pair of fingerprints in a manifest and prints those
within --threshold bits of each other, closest first. Pairs whose source
bytes are identical are marked "identical".`,
	Args: cobra.ExactArgs(1),
	RunE: runDupes,
}

func init() {
	dupesCmd.Flags().IntVarP(&dupesThreshold, "threshold", "t", 5, "maximum Hamming distance")
	dupesCmd.Flags().BoolVar(&dupesJSON, "json", false, "print pairs as JSON")
	rootCmd.AddCommand(dupesCmd)
}

func runDupes(cmd *cobra.Command, args []string) error {
	m, err := loadManifest(args[0])
	if err != nil {
		return err
	}
	pairs := m.NearDuplicates(dupesThreshold)
	log.WithField("pairs", len(pairs)).Debugf("compared %d entries", len(m.Entries))

	w := cmd.OutOrStdout()
	if dupesJSON {
		return writeJSON(w, pairs)
	}
	if len(pairs) == 0 {
		fmt.Fprintf(w, "  no pairs within %d bits\n", dupesThreshold)
		return nil
	}
	for _, p := range pairs {
		mark := ""
		if p.SameData {
			mark = "  identical " + digest.Short(m.Entries[p.A].Digest, 8)
		}
		fmt.Fprintf(w, "  %4d  %-36s %-36s%s\n", p.Distance, truncKey(p.A, 36), truncKey(p.B, 36), mark)
	}
	return nil
}
