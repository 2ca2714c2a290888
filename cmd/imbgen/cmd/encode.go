package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/postalworks/imbgen/internal/imb"
)

// encodeCmd represents the encode command for a single barcode.
var encodeCmd = &cobra.Command{
	Use:   "encode",
	Short: "Encode a single Intelligent Mail barcode",
	Long: `Encode one mailpiece into its 65-character Intelligent Mail barcode.

The tracking fields can be given individually (--barcode-id, --service-type,
--mailer-id, --sequence) or as a pre-assembled 20-digit tracking number
(--tracking). The routing code is either passed directly (--routing-code)
or built from its parts (--zip5, --plus4, --delivery-point).

Examples:
  imbgen encode --mailer-id 123456 --sequence 1
  imbgen encode --mailer-id 123456789 --sequence 42 --routing-code 90210-5432
  imbgen encode --mailer-id 123456 --sequence 1 --zip5 90210 --plus4 5432 --delivery-point 01
  imbgen encode --tracking 01234567094987654321 --routing-code 01234567891 --format json`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runEncodeCommand,
}

func runEncodeCommand(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	// Per-run defaults from config with CLI flag overrides
	barcodeID := cfg.Encode.BarcodeID
	if cmd.Flags().Changed("barcode-id") {
		barcodeID, _ = cmd.Flags().GetString("barcode-id")
	}

	serviceType := cfg.Encode.ServiceType
	if cmd.Flags().Changed("service-type") {
		serviceType, _ = cmd.Flags().GetString("service-type")
	}

	mailerID := cfg.Encode.MailerID
	if cmd.Flags().Changed("mailer-id") {
		mailerID, _ = cmd.Flags().GetString("mailer-id")
	}

	strict := cfg.Encode.Strict
	if cmd.Flags().Changed("strict") {
		strict, _ = cmd.Flags().GetBool("strict")
	}

	format := cfg.Output.Format
	if cmd.Flags().Changed("format") {
		format, _ = cmd.Flags().GetString("format")
	}

	outputFile := cfg.Output.File
	if cmd.Flags().Changed("output") {
		outputFile, _ = cmd.Flags().GetString("output")
	}

	sequence, _ := cmd.Flags().GetInt64("sequence")
	tracking, _ := cmd.Flags().GetString("tracking")

	routingCode, err := resolveRoutingCode(cmd)
	if err != nil {
		return err
	}

	var result *imb.Result
	if tracking != "" {
		result, err = imb.EncodeTrackingNumber(tracking, routingCode)
	} else {
		enc := imb.New(imb.Options{
			ServiceTypes:    cfg.Encode.ServiceTypes,
			StrictBarcodeID: strict,
		})
		result, err = enc.Encode(imb.Request{
			BarcodeID:   barcodeID,
			ServiceType: serviceType,
			MailerID:    mailerID,
			Sequence:    sequence,
			RoutingCode: routingCode,
		})
	}
	if err != nil {
		return fmt.Errorf("encoding failed: %w", err)
	}

	output, err := formatEncodeResult(result, format)
	if err != nil {
		return err
	}

	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(output), 0o600); err != nil {
			return fmt.Errorf("failed to write output file %s: %w", outputFile, err)
		}
		return nil
	}
	_, _ = fmt.Fprint(cmd.OutOrStdout(), output)
	return nil
}

// resolveRoutingCode returns the routing code from --routing-code or builds
// it from --zip5/--plus4/--delivery-point. Mixing both forms is an error.
func resolveRoutingCode(cmd *cobra.Command) (string, error) {
	routingCode, _ := cmd.Flags().GetString("routing-code")
	zip5, _ := cmd.Flags().GetString("zip5")
	plus4, _ := cmd.Flags().GetString("plus4")
	dp, _ := cmd.Flags().GetString("delivery-point")

	if zip5 == "" && plus4 == "" && dp == "" {
		return routingCode, nil
	}
	if routingCode != "" {
		return "", fmt.Errorf("--routing-code cannot be combined with --zip5/--plus4/--delivery-point")
	}
	if zip5 == "" {
		return "", fmt.Errorf("--zip5 is required when --plus4 or --delivery-point is given")
	}
	return imb.BuildRoutingCode(zip5, plus4, dp), nil
}

// formatEncodeResult renders a single encode result as text or JSON.
func formatEncodeResult(result *imb.Result, format string) (string, error) {
	switch format {
	case "", "text":
		return fmt.Sprintf("%s\n", result.Barcode), nil
	case "json":
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to marshal result: %w", err)
		}
		return string(data) + "\n", nil
	default:
		return "", fmt.Errorf("unsupported output format: %s (must be text or json)", format)
	}
}

func init() {
	rootCmd.AddCommand(encodeCmd)

	// Tracking fields
	encodeCmd.Flags().String("barcode-id", "", "2-digit barcode identifier (default from config)")
	encodeCmd.Flags().String("service-type", "", "3-digit service type identifier (default from config)")
	encodeCmd.Flags().StringP("mailer-id", "m", "", "6- or 9-digit mailer ID")
	encodeCmd.Flags().Int64P("sequence", "s", 0, "mailpiece sequence number")
	encodeCmd.Flags().String("tracking", "", "pre-assembled 20-digit tracking number (bypasses field assembly)")
	encodeCmd.Flags().Bool("strict", false, "enforce USPS digit conventions on the barcode identifier")

	// Routing code
	encodeCmd.Flags().StringP("routing-code", "r", "", "routing code: empty, 5, 9 or 11 digits (dashes allowed)")
	encodeCmd.Flags().String("zip5", "", "5-digit ZIP code (alternative to --routing-code)")
	encodeCmd.Flags().String("plus4", "", "4-digit ZIP+4 extension")
	encodeCmd.Flags().String("delivery-point", "", "2-digit delivery point")

	// Output
	encodeCmd.Flags().StringP("format", "f", "text", "output format: text, json")
	encodeCmd.Flags().StringP("output", "o", "", "output file (default: stdout)")
}
