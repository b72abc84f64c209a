package cmd

import (
	"fmt"
	"strconv"

	"code.cloudfoundry.org/bytefmt"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/spacemeshos/steg"
)

var parallelism int

// capacityCmd represents the capacity command.
var capacityCmd = &cobra.Command{
	Use:   "capacity <image>...",
	Short: "Print how large a secret the images can hold",
	Long: `Print, for every image and every number of bits, the largest secret that fits.
Only image headers are read.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reports, err := steg.Capacity(args, steg.WithLogger(logger), steg.WithParallelism(parallelism))
		if err != nil {
			return err
		}

		data := make([][]string, 0, len(reports)*8)
		for _, report := range reports {
			for _, e := range report.Entries {
				data = append(data, []string{
					report.Path,
					report.Format,
					fmt.Sprintf("%dx%d", report.Width, report.Height),
					strconv.Itoa(int(e.Bits)),
					strconv.Itoa(e.Chunks),
					strconv.Itoa(e.Wasted),
					bytefmt.ByteSize(e.Capacity),
					strconv.FormatUint(e.Capacity, 10),
				})
			}
		}

		header := []string{"image", "format", "size", "bits", "chunks/byte", "wasted bits/byte", "capacity", "bytes"}
		table := tablewriter.NewWriter(cmd.OutOrStdout())
		table.SetHeader(header)
		table.SetBorder(true)
		table.AppendBulk(data)
		table.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(capacityCmd)

	capacityCmd.Flags().IntVarP(&parallelism, "parallelism", "p", 0, "number of images probed in parallel (0 - one per CPU)")
}
