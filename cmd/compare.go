package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/pixhash/internal/phash"
)

var compareJSON bool

var compareCmd = &cobra.Command{
	Use:   "compare <hash_a> <hash_b>",
	Short: "Hamming distance between two base64 hashes",
	Args:  cobra.ExactArgs(2),
	RunE:  runCompare,
}

func init() {
	compareCmd.Flags().BoolVar(&compareJSON, "json", false, "print the result as JSON")
	rootCmd.AddCommand(compareCmd)
}

type compareResult struct {
	Distance   int     `json:"distance"`
	Bits       int     `json:"bits"`
	Similarity float64 `json:"similarity"`
}

func runCompare(cmd *cobra.Command, args []string) error {
	r, err := compareHashes(args[0], args[1])
	if err != nil {
		return err
	}
	if compareJSON {
		return writeJSON(cmd.OutOrStdout(), r)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "distance %d/%d, similarity %.4f\n", r.Distance, r.Bits, r.Similarity)
	return nil
}

func compareHashes(a, b string) (compareResult, error) {
	d, err := phash.Distance(a, b)
	if err != nil {
		return compareResult{}, err
	}
	sim, err := phash.Similarity(a, b)
	if err != nil {
		return compareResult{}, err
	}
	raw, err := phash.DecodeBase64(a)
	if err != nil {
		return compareResult{}, err
	}
	return compareResult{Distance: d, Bits: len(raw) * 8, Similarity: sim}, nil
}
