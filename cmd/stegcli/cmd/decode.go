package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spacemeshos/steg"
)

// decodeCmd represents the decode command.
var decodeCmd = &cobra.Command{
	Use:   "decode <image> <output>",
	Short: "Recover a secret file from an image",
	Long: `Recover the secret hidden in <image> and write it to <output>.
Use the same number of bits (-b) the secret was encoded with.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := steg.Reveal(cfg, args[0], args[1], steg.WithLogger(logger))
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "recovered %d bytes into %v (blake3 %v)\n", report.SecretLen, args[1], report.Digest)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(decodeCmd)
}
