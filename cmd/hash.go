package cmd

import (
	"github.com/spf13/cobra"

	"github.com/AnyUserName/pixhash/internal/service"
)

var (
	hashAlgorithm string
	hashSize      int
	hashPreset    string
)

var hashCmd = &cobra.Command{
	Use:   "hash <path>",
	Short: "Hash one object from the configured store",
	Long: `Fetches <path> from the configured store (a local directory or S3
bucket), decodes it and prints the hash response as JSON.

Omitted --algorithm and --hash-size fall back to --preset, then to the
[hash] section of the config file.`,
	Args: cobra.ExactArgs(1),
	RunE: runHash,
}

func init() {
	hashCmd.Flags().StringVarP(&hashAlgorithm, "algorithm", "a", "", "Mean, Gradient, VertGradient, DoubleGradient or Blockhash")
	hashCmd.Flags().IntVarP(&hashSize, "hash-size", "s", 0, "hash length in bits: 16, 64, 256 or 1024")
	hashCmd.Flags().StringVarP(&hashPreset, "preset", "p", "", "named algorithm and size from the config file")
	rootCmd.AddCommand(hashCmd)
}

func runHash(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	defaults, err := requestDefaults(hashPreset)
	if err != nil {
		return err
	}
	svc, err := newService(ctx, defaults)
	if err != nil {
		return err
	}

	req := service.Request{Path: args[0]}
	if cmd.Flags().Changed("algorithm") {
		req.Algorithm = &hashAlgorithm
	}
	if cmd.Flags().Changed("hash-size") {
		req.HashSize = &hashSize
	}

	resp, err := svc.Handle(ctx, req)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), resp)
}
