package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/postalworks/imbgen/internal/common"
	"github.com/postalworks/imbgen/internal/imb"
)

// benchCmd measures encoding throughput on this machine.
var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Measure barcode encoding throughput",
	Long: `Encode a stream of synthetic mailpieces and report the sustained
encoding rate. Useful for sizing batch worker counts.

Examples:
  imbgen bench
  imbgen bench --iterations 500000`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		iterations, _ := cmd.Flags().GetInt("iterations")
		if iterations <= 0 {
			return fmt.Errorf("invalid iteration count: %d", iterations)
		}

		enc := imb.New(imb.Options{})
		result := common.RunBenchmark("encode", iterations, func(i int) error {
			_, err := enc.Encode(imb.Request{
				BarcodeID:   "00",
				ServiceType: "040",
				MailerID:    "123456",
				Sequence:    int64(i%999999999) + 1,
				RoutingCode: "900123456",
			})
			return err
		})
		if result.Err != nil {
			return fmt.Errorf("benchmark failed after %d iterations: %w", result.Iterations, result.Err)
		}

		_, _ = fmt.Fprintln(cmd.OutOrStdout(), result.String())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(benchCmd)
	benchCmd.Flags().IntP("iterations", "n", 100000, "number of barcodes to encode")
}
