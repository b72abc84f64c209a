package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spacemeshos/steg"
)

// encodeCmd represents the encode command.
var encodeCmd = &cobra.Command{
	Use:   "encode <image> <secret> <output>",
	Short: "Hide a secret file into an image",
	Long: `Hide the contents of <secret> in the least-significant bits of <image> and
write the result to <output>. The output format is picked from its extension.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := steg.Hide(cfg, args[0], args[1], args[2], steg.WithLogger(logger))
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "hid %d bytes in %v (blake3 %v)\n", report.SecretLen, args[2], report.Digest)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(encodeCmd)
}
